package httpapi

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"shopadmin.org/internal/audit"
	"shopadmin.org/internal/auth"
	"shopadmin.org/internal/obs"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Back office login</title></head>
<body>
<main>
  <h1>Back office</h1>
  {{if .Failed}}<p class="alert" role="alert">Invalid credentials.</p>{{end}}
  <form method="post" action="{{.Action}}">
    <label>Email <input type="email" name="email" required autofocus></label>
    <label>Password <input type="password" name="password" required></label>
    <label><input type="checkbox" name="stay_logged_in" value="1"> Stay logged in</label>
    {{if .RedirectURL}}<input type="hidden" name="redirect_url" value="{{.RedirectURL}}">{{end}}
    <button type="submit">Log in</button>
  </form>
</main>
</body>
</html>
`))

type loginView struct {
	Action      string
	Failed      bool
	RedirectURL string
}

func (a *API) loginPage(w http.ResponseWriter, r *http.Request) {
	view := loginView{
		Action: a.deps.Authenticator.LoginURL(),
		Failed: r.URL.Query().Has("error"),
	}
	if target := r.URL.Query().Get("redirect_url"); auth.LocalRedirect(target) {
		view.RedirectURL = target
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginTemplate.Execute(w, view); err != nil {
		obs.L(r.Context()).Error("render login page", zap.Error(err))
	}
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, err := a.deps.Sessions.Load(r)
	a.deps.Sessions.Clear(w)
	if err == nil {
		if err := a.deps.Provider.Evict(ctx, claims.Subject); err != nil {
			obs.L(ctx).Warn("evict employee cache entry", zap.Error(err))
		}
		_ = audit.LogEvent(ctx, audit.EventLogout, map[string]any{
			"username":    claims.Subject,
			"employee_id": claims.EmployeeID,
		})
	}
	http.Redirect(w, r, a.deps.Authenticator.LoginURL(), http.StatusSeeOther)
}
