// Package health implements the liveness probe combining mirror and
// upstream API reachability.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"steve-mcp/internal/logging"
)

// StorePinger is the mirror's trivial liveness command
type StorePinger interface {
	Ping(ctx context.Context) error
}

// APIHealth is the upstream API's own health endpoint
type APIHealth interface {
	Health(ctx context.Context) error
}

// Status is the probe's JSON response body
type Status struct {
	Status    string `json:"status"`
	MongoDB   bool   `json:"mongodb"`
	API       bool   `json:"api"`
	Timestamp string `json:"timestamp"`
}

// Healthy reports overall health: both dependencies must respond
func (s Status) Healthy() bool {
	return s.Status == "healthy"
}

// Checker polls both dependencies. An unconfigured mirror reports unhealthy:
// the deployment promised a mirror it cannot reach.
type Checker struct {
	store  StorePinger // nil when no mirror is configured
	api    APIHealth
	logger logging.Logger
}

// NewChecker creates a health checker. store may be nil.
func NewChecker(store StorePinger, api APIHealth, logger logging.Logger) *Checker {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Checker{store: store, api: api, logger: logger}
}

// Check polls both dependencies and reports overall health
func (c *Checker) Check(ctx context.Context) Status {
	mongoHealthy := false
	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			c.logger.WarnContext(ctx, "mirror health check failed", "error", err)
		} else {
			mongoHealthy = true
		}
	}

	apiHealthy := false
	if err := c.api.Health(ctx); err != nil {
		c.logger.WarnContext(ctx, "API health check failed", "error", err)
	} else {
		apiHealthy = true
	}

	status := "unhealthy"
	if mongoHealthy && apiHealthy {
		status = "healthy"
	}

	return Status{
		Status:    status,
		MongoDB:   mongoHealthy,
		API:       apiHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Handler serves the probe as JSON with 200 when healthy, 503 otherwise
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := c.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Healthy() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			c.logger.Error("encoding health response", "error", err)
		}
	}
}
