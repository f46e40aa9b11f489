package service

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService serves the liveness probe.
type HealthService struct {
	store Pinger
	log   *log.Helper
}

// NewHealthService creates a HealthService.
func NewHealthService(store Pinger, logger log.Logger) *HealthService {
	return &HealthService{
		store: store,
		log:   log.NewHelper(log.With(logger, "module", "service/health")),
	}
}

// Check handles GET /healthz
func (s *HealthService) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.WithContext(ctx).Warnf("health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
