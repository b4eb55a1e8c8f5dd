package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shopadmin.org/internal/auth"
	"shopadmin.org/internal/obs"
)

// RequireEmployee resolves the session's employee through the provider and
// stores it in the request context. Anonymous or stale sessions are sent to
// the login page.
func (a *API) RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims, err := a.deps.Sessions.Load(r)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) {
				a.deps.Sessions.Clear(w)
			}
			a.redirectToLogin(w, r)
			return
		}

		stub := auth.NewPrincipal(claims.EmployeeID, claims.Subject, "", claims.Roles)
		user, err := a.deps.Provider.RefreshUser(ctx, stub)
		if err != nil {
			if !errors.Is(err, auth.ErrUsernameNotFound) {
				obs.L(ctx).Error("refresh employee", zap.Error(err))
			}
			a.deps.Sessions.Clear(w)
			a.redirectToLogin(w, r)
			return
		}
		principal, ok := user.(*auth.Principal)
		if !ok || principal.ID() != claims.EmployeeID {
			a.deps.Sessions.Clear(w)
			a.redirectToLogin(w, r)
			return
		}

		logger := obs.L(ctx).With(zap.Int64("employee_id", principal.ID()))
		ctx = obs.WithLogger(auth.ContextWithPrincipal(ctx, principal), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := a.deps.Authenticator.LoginURL()
	if r.Method == http.MethodGet && auth.LocalRedirect(r.URL.RequestURI()) {
		target += "?" + url.Values{"redirect_url": {r.URL.RequestURI()}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (a *API) home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.deps.Routes.mustGenerate(RouteDashboard), http.StatusFound)
}

var sectionPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type pageResponse struct {
	Section  string       `json:"section"`
	Employee employeeView `json:"employee"`
}

type employeeView struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (a *API) page(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	section := chi.URLParam(r, "section")
	if !sectionPattern.MatchString(section) {
		writeError(w, r, http.StatusNotFound, "unknown section")
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Section: section,
		Employee: employeeView{
			ID:    principal.ID(),
			Email: principal.Username(),
			Roles: principal.Roles(),
		},
	})
}
