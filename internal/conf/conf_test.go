package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"24h"`, 24 * time.Hour, false},
		{"fractional", `"1.5s"`, 1500 * time.Millisecond, false},
		{"nanoseconds number", `1000`, time.Microsecond, false},
		{"invalid string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.AsDuration())
		})
	}
}

func TestDuration_NilAsDuration(t *testing.T) {
	var d *Duration
	assert.Equal(t, time.Duration(0), d.AsDuration())
}

func TestBootstrap_Unmarshal(t *testing.T) {
	raw := `{
		"log": {"level": "debug", "format": "console"},
		"server": {"http": {"addr": "0.0.0.0:8000", "timeout": "1s", "rate_limit_per_minute": 60}},
		"data": {"database": {"driver": "sqlite3", "source": "file:x?mode=memory", "auto_migrate": true}},
		"redirect": {"link_ttl": "24h", "disabled_path": "/link-disabled"},
		"slug": {"length": 7, "max_attempts": 5}
	}`

	var bc Bootstrap
	require.NoError(t, json.Unmarshal([]byte(raw), &bc))

	assert.Equal(t, "0.0.0.0:8000", bc.Server.Http.Addr)
	assert.Equal(t, time.Second, bc.Server.Http.Timeout.AsDuration())
	assert.Equal(t, 60, bc.Server.Http.RateLimitPerMinute)
	assert.Equal(t, "debug", bc.Log.Level)
	assert.Equal(t, "sqlite3", bc.Data.Database.Driver)
	assert.True(t, bc.Data.Database.AutoMigrate)
	assert.Equal(t, 24*time.Hour, bc.Redirect.LinkTtl.AsDuration())
	assert.Equal(t, 7, bc.Slug.Length)
	assert.Nil(t, bc.Ingestion)
}
