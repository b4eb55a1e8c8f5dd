package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"shopadmin.org/internal/employee"
	"shopadmin.org/internal/obs"
)

// LoginRoute is the route name of the admin login page.
const LoginRoute = "_admin_login"

// Login outcomes reported to the OutcomeFunc.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidForm   = "invalid_form"
	OutcomeUnknownUser   = "unknown_user"
	OutcomeBadPassword   = "bad_password"
	OutcomeLookupFailure = "lookup_error"
	OutcomeSessionError  = "session_error"
)

// Router generates URLs from route names.
type Router interface {
	Generate(name string) (string, error)
}

// Credentials extracted from one login request. Both fields are empty when the
// form was invalid.
type Credentials struct {
	Username string
	Password string
}

// OutcomeFunc observes each login attempt; username may be empty.
type OutcomeFunc func(ctx context.Context, outcome, username string)

// LoginFormAuthenticator authenticates employees posting the admin login form.
type LoginFormAuthenticator struct {
	provider UserProvider
	lookup   employee.Lookup
	sessions SessionHandler
	router   Router
	verifier Verifier
	onResult OutcomeFunc
}

// AuthenticatorOption configures LoginFormAuthenticator.
type AuthenticatorOption func(*LoginFormAuthenticator)

// WithVerifier replaces the bcrypt verifier.
func WithVerifier(v Verifier) AuthenticatorOption {
	return func(a *LoginFormAuthenticator) {
		if v != nil {
			a.verifier = v
		}
	}
}

// WithOutcomeHook registers fn to observe login attempts.
func WithOutcomeHook(fn OutcomeFunc) AuthenticatorOption {
	return func(a *LoginFormAuthenticator) {
		a.onResult = fn
	}
}

func NewLoginFormAuthenticator(provider UserProvider, lookup employee.Lookup, sessions SessionHandler, router Router, opts ...AuthenticatorOption) *LoginFormAuthenticator {
	a := &LoginFormAuthenticator{
		provider: provider,
		lookup:   lookup,
		sessions: sessions,
		router:   router,
		verifier: BcryptVerifier{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Supports reports whether r is a login form submission.
func (a *LoginFormAuthenticator) Supports(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	loginPath, err := a.router.Generate(LoginRoute)
	if err != nil {
		return false
	}
	return r.URL.Path == loginPath
}

// Credentials binds the submitted form.
func (a *LoginFormAuthenticator) Credentials(r *http.Request) Credentials {
	form, ok := bindLoginForm(r)
	if !ok {
		return Credentials{}
	}
	return Credentials{Username: form.Email, Password: form.Password}
}

// User resolves the credentials' username through provider. It returns
// (nil, nil) when no username was submitted.
func (a *LoginFormAuthenticator) User(ctx context.Context, creds Credentials, provider UserProvider) (User, error) {
	if creds.Username == "" {
		return nil, nil
	}
	return provider.LoadUserByUsername(ctx, creds.Username)
}

// CheckCredentials verifies the submitted password against the user's hash.
func (a *LoginFormAuthenticator) CheckCredentials(creds Credentials, user User) bool {
	if user == nil {
		return false
	}
	return a.verifier.Verify(creds.Password, user.PasswordHash())
}

// OnAuthenticationSuccess establishes the session and redirects to the
// submitted redirect_url, or to the employee's default page.
func (a *LoginFormAuthenticator) OnAuthenticationSuccess(w http.ResponseWriter, r *http.Request, user User) error {
	ctx := r.Context()
	obs.L(ctx).Info("Back office connection from "+clientIP(r), zap.String("employee", user.Username()))

	form, _ := bindLoginForm(r)

	// The cached principal lacks the landing page, so go back to the source.
	emp, err := a.lookup.ForAuthentication(ctx, employee.GetForAuthentication{Email: user.Username()})
	if err != nil {
		return fmt.Errorf("auth: reload employee: %w", err)
	}
	if err := a.sessions.SetAuthenticationCredentials(w, r, emp, form.StayLoggedIn); err != nil {
		return err
	}

	target := emp.DefaultPageURL
	if LocalRedirect(form.RedirectURL) {
		target = form.RedirectURL
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

// OnAuthenticationFailure sends the browser back to the login page. Every
// failure produces the same response.
func (a *LoginFormAuthenticator) OnAuthenticationFailure(w http.ResponseWriter, r *http.Request) {
	target := a.LoginURL()
	u, err := url.Parse(target)
	if err == nil {
		q := u.Query()
		q.Set("error", "1")
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// LoginURL returns the login page URL.
func (a *LoginFormAuthenticator) LoginURL() string {
	path, err := a.router.Generate(LoginRoute)
	if err != nil {
		return "/"
	}
	return path
}

// Authenticate runs the full login flow for r. It returns false when r is not
// a login submission and nothing was written.
func (a *LoginFormAuthenticator) Authenticate(w http.ResponseWriter, r *http.Request) bool {
	if !a.Supports(r) {
		return false
	}
	ctx := r.Context()
	logger := obs.L(ctx)

	creds := a.Credentials(r)
	if creds.Username == "" {
		a.fail(w, r, OutcomeInvalidForm, "")
		return true
	}

	user, err := a.User(ctx, creds, a.provider)
	if err != nil || user == nil {
		// Burn one hash verification so unknown users cost the same as wrong passwords.
		a.verifier.Verify(creds.Password, DummyHash())
		outcome := OutcomeUnknownUser
		if err != nil && !errors.Is(err, ErrUsernameNotFound) {
			outcome = OutcomeLookupFailure
			logger.Error("login lookup failed", zap.Error(err))
		}
		a.fail(w, r, outcome, creds.Username)
		return true
	}

	if !a.CheckCredentials(creds, user) {
		a.fail(w, r, OutcomeBadPassword, creds.Username)
		return true
	}

	if err := a.OnAuthenticationSuccess(w, r, user); err != nil {
		logger.Error("login success handling failed", zap.Error(err))
		a.fail(w, r, OutcomeSessionError, creds.Username)
		return true
	}
	a.report(ctx, OutcomeSuccess, creds.Username)
	return true
}

// Middleware intercepts login submissions and passes everything else through.
func (a *LoginFormAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Authenticate(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *LoginFormAuthenticator) fail(w http.ResponseWriter, r *http.Request, outcome, username string) {
	obs.L(r.Context()).Info("back office login failed", zap.String("outcome", outcome))
	a.report(r.Context(), outcome, username)
	a.OnAuthenticationFailure(w, r)
}

func (a *LoginFormAuthenticator) report(ctx context.Context, outcome, username string) {
	obs.LoginAttempts.WithLabelValues(outcome).Inc()
	if a.onResult != nil {
		a.onResult(ctx, outcome, username)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
