package httpapi

import (
	"fmt"
	"strings"

	"shopadmin.org/internal/auth"
)

// Route names understood by StaticRouter.
const (
	RouteLogin     = auth.LoginRoute
	RouteLogout    = "_admin_logout"
	RouteDashboard = "_admin_dashboard"
)

var _ auth.Router = StaticRouter{}

// StaticRouter maps route names to paths below the admin base path.
type StaticRouter struct {
	base  string
	paths map[string]string
}

// NewStaticRouter returns the admin routes mounted at base ("/admin" when empty).
func NewStaticRouter(base string) StaticRouter {
	base = "/" + strings.Trim(strings.TrimSpace(base), "/")
	if base == "/" {
		base = "/admin"
	}
	return StaticRouter{
		base: base,
		paths: map[string]string{
			RouteLogin:     base + "/login",
			RouteLogout:    base + "/logout",
			RouteDashboard: base + "/dashboard",
		},
	}
}

// Base returns the admin base path.
func (s StaticRouter) Base() string {
	if s.base == "" {
		return "/admin"
	}
	return s.base
}

func (s StaticRouter) Generate(name string) (string, error) {
	path, ok := s.paths[name]
	if !ok {
		return "", fmt.Errorf("httpapi: unknown route %q", name)
	}
	return path, nil
}

func (s StaticRouter) mustGenerate(name string) string {
	path, err := s.Generate(name)
	if err != nil {
		return s.Base()
	}
	return path
}
