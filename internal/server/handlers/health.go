// Package handlers implements the API server's HTTP handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/3leaps/objfs/internal/errors"
)

// HealthChecker probes one dependency.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthResponse is the body returned by health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

const checkTimeout = 5 * time.Second

// HealthManager runs registered checkers and reports aggregate status.
type HealthManager struct {
	mu       sync.RWMutex
	version  string
	checkers map[string]HealthChecker
}

// NewHealthManager creates a manager reporting the given version.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		version:  version,
		checkers: make(map[string]HealthChecker),
	}
}

// RegisterChecker adds a named dependency check.
func (m *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

func (m *HealthManager) runChecks(ctx context.Context) map[string]string {
	m.mu.RLock()
	checkers := make(map[string]HealthChecker, len(m.checkers))
	for name, c := range m.checkers {
		checkers[name] = c
	}
	m.mu.RUnlock()

	results := make(map[string]string, len(checkers))
	for name, checker := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := checker.CheckHealth(checkCtx)
		cancel()
		switch {
		case err == nil:
			results[name] = "healthy"
		case checkCtx.Err() != nil:
			results[name] = "timeout"
		default:
			results[name] = "unhealthy"
		}
	}
	return results
}

// determineOverallStatus aggregates individual check results. A timeout
// degrades the service; an unhealthy check makes it unhealthy.
func (m *HealthManager) determineOverallStatus(checks map[string]string) string {
	status := "healthy"
	for _, s := range checks {
		switch s {
		case "unhealthy":
			return "unhealthy"
		case "timeout":
			status = "degraded"
		}
	}
	return status
}

// HealthHandler runs all checks and reports aggregate health.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks := m.runChecks(r.Context())
	status := m.determineOverallStatus(checks)

	if status == "unhealthy" {
		details := make(map[string]interface{}, len(checks))
		for name, s := range checks {
			details[name] = s
		}
		respondWithError(w, r, &apperrors.StatusError{
			Status: http.StatusServiceUnavailable,
			Detail: apperrors.ErrorDetail{
				Code:    "SERVICE_UNAVAILABLE",
				Message: "one or more health checks failed",
				Details: map[string]interface{}{"checks": details},
			},
		})
		return
	}

	writeHealth(w, HealthResponse{
		Status:    status,
		Version:   m.version,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

// LivenessHandler reports process liveness without running dependency
// checks.
func (m *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, HealthResponse{
		Status:    "healthy",
		Version:   m.version,
		Timestamp: time.Now().UTC(),
	})
}

// ReadinessHandler runs dependency checks; any non-healthy result means
// not ready.
func (m *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}

// StartupHandler mirrors readiness for startup probes.
func (m *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}

func writeHealth(w http.ResponseWriter, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

var globalHealthManager *HealthManager

// InitHealthManager installs the process-wide health manager.
func InitHealthManager(version string) {
	globalHealthManager = NewHealthManager(version)
}

// GetHealthManager returns the process-wide health manager, or nil.
func GetHealthManager() *HealthManager {
	return globalHealthManager
}

func globalHandler(pick func(*HealthManager) http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if globalHealthManager == nil {
			respondWithError(w, r, &apperrors.StatusError{
				Status: http.StatusServiceUnavailable,
				Detail: apperrors.ErrorDetail{
					Code:    "SERVICE_UNAVAILABLE",
					Message: "health manager not initialized",
				},
			})
			return
		}
		pick(globalHealthManager)(w, r)
	}
}

// HealthHandler serves aggregate health via the global manager.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	globalHandler(func(m *HealthManager) http.HandlerFunc { return m.HealthHandler })(w, r)
}

// LivenessHandler serves liveness via the global manager.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	globalHandler(func(m *HealthManager) http.HandlerFunc { return m.LivenessHandler })(w, r)
}

// ReadinessHandler serves readiness via the global manager.
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	globalHandler(func(m *HealthManager) http.HandlerFunc { return m.ReadinessHandler })(w, r)
}

// StartupHandler serves the startup probe via the global manager.
func StartupHandler(w http.ResponseWriter, r *http.Request) {
	globalHandler(func(m *HealthManager) http.HandlerFunc { return m.StartupHandler })(w, r)
}
