// Package httpapi exposes the task access service over HTTP. Handlers
// stay thin: decode, call the service, map errors. All authorization and
// audit behavior lives below in the service layer.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"taskdeck.org/internal/audit"
	"taskdeck.org/internal/auth"
	"taskdeck.org/internal/obs"
	"taskdeck.org/internal/task"
)

// TaskService is the orchestrator surface the handlers call.
type TaskService interface {
	List(ctx context.Context, p auth.Principal) ([]task.Task, error)
	Create(ctx context.Context, p auth.Principal, in task.CreateInput) (*task.Task, error)
	Update(ctx context.Context, p auth.Principal, id string, in task.UpdateInput) (*task.Task, error)
	Remove(ctx context.Context, p auth.Principal, id string) error
	AuditLog(ctx context.Context, p auth.Principal) ([]audit.Entry, error)
}

// LoginService verifies credentials and issues tokens.
type LoginService interface {
	Login(ctx context.Context, email, password string) (string, auth.Principal, time.Time, error)
}

// ReadyProbe reports whether the backing store is reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	tasks      TaskService
	login      LoginService
}

func New(rp ReadyProbe, version string, tasks TaskService, login LoginService) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		tasks:      tasks,
		login:      login,
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/tasks", a.handleTasks)
	a.mux.HandleFunc("/v1/tasks/", a.handleTaskByID)
	a.mux.HandleFunc("/v1/audit-log", a.handleAuditLog)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler composes the full middleware chain around the mux. Order
// matters: the request id must exist before logging, and authentication
// runs after rate limiting so anonymous floods cannot burn token parses.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 20, 10)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "taskdeck-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// principal pulls the authenticated principal; the authn middleware has
// already rejected anonymous requests on protected paths.
func principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	}
	return p, ok
}
