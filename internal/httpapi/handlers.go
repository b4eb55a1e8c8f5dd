package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"shopadmin.org/internal/auth"
	"shopadmin.org/internal/obs"
)

const loginBodyLimit = 64 << 10

// Pinger is satisfied by cache backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyProbe checks the service dependencies.
type ReadyProbe struct {
	DB    *sql.DB
	Cache Pinger
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var errs []error
	if rp.DB != nil {
		if err := rp.DB.PingContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if rp.Cache != nil {
		if err := rp.Cache.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sessions reads and clears the admin session cookie.
type Sessions interface {
	Load(r *http.Request) (*auth.SessionClaims, error)
	Clear(w http.ResponseWriter)
}

// Provider resolves employees for protected pages and drops them on logout.
type Provider interface {
	auth.UserProvider
	Evict(ctx context.Context, username string) error
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Authenticator *auth.LoginFormAuthenticator
	Provider      Provider
	Sessions      Sessions
	Routes        StaticRouter
	Ready         ReadyProbe
	Logger        *zap.Logger
	Version       string

	LoginRatePerSec float64
	LoginRateBurst  int
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// API is the back office HTTP layer.
type API struct {
	router  chi.Router
	deps    Deps
	limiter *ipLimiter
}

func New(deps Deps) *API {
	if deps.Logger == nil {
		deps.Logger = obs.Logger()
	}
	if deps.LoginRatePerSec <= 0 {
		deps.LoginRatePerSec = 1
	}
	if deps.LoginRateBurst <= 0 {
		deps.LoginRateBurst = 5
	}
	a := &API{
		deps:    deps,
		limiter: newIPLimiter(deps.LoginRatePerSec, deps.LoginRateBurst),
	}
	a.router = a.routes()
	return a
}

func (a *API) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if a.deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(LoggingContext(a.deps.Logger))
	r.Use(Recoverer())
	r.Use(obs.Instrument)
	r.Use(SecurityHeaders)

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Handle("/metrics", obs.Handler())

	routes := a.deps.Routes
	r.Route(routes.Base(), func(r chi.Router) {
		r.Get("/login", a.loginPage)
		r.With(MaxBodyBytes(loginBodyLimit), a.limiter.Middleware, a.deps.Authenticator.Middleware).
			Post("/login", http.NotFound)
		r.Post("/logout", a.logout)

		r.Group(func(r chi.Router) {
			r.Use(a.RequireEmployee)
			r.Get("/", a.home)
			r.Get("/{section}", a.page)
		})
	})
	return r
}

// Handler returns the root http.Handler.
func (a *API) Handler() http.Handler {
	return a.router
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "backoffice",
		"version": a.deps.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Ready.Check(r.Context()); err != nil {
		obs.L(r.Context()).Warn("readiness check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":      msg,
		"request_id": chimw.GetReqID(r.Context()),
	})
}
