package zaplog

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Log(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := New(zap.New(core))

	helper := log.NewHelper(log.With(logger, "module", "test"))
	helper.Infof("created link %s", "promo")
	helper.Warnw("msg", "cache down", "slug", "promo")
	helper.Debug("verbose")

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "created link promo", entries[0].Message)
	assert.Equal(t, "test", entries[0].ContextMap()["module"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "cache down", entries[1].Message)
	assert.Equal(t, "promo", entries[1].ContextMap()["slug"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestLogger_UnpairedKeyvals(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := New(zap.New(core))

	require.NoError(t, logger.Log(log.LevelInfo, "lonely"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "KEYVALS UNPAIRED", entries[0].ContextMap()["lonely"])
}

func TestNewFromConfig(t *testing.T) {
	l, err := NewFromConfig("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewFromConfig("loud", "json")
	assert.Error(t, err)
}
