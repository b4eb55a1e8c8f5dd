package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shopadmin.org/internal/employee"
)

const (
	defaultIssuer      = "backoffice"
	defaultCookieName  = "PrestaShop-Admin"
	defaultSessionTTL  = time.Hour
	defaultRememberTTL = 14 * 24 * time.Hour
	minSecretLength    = 32
)

// SessionHandler persists the credentials of a freshly authenticated employee.
type SessionHandler interface {
	SetAuthenticationCredentials(w http.ResponseWriter, r *http.Request, emp employee.AuthenticatedEmployee, stayLoggedIn bool) error
}

// SessionClaims are carried in the signed session cookie.
type SessionClaims struct {
	EmployeeID   int64    `json:"eid"`
	Roles        []string `json:"roles,omitempty"`
	StayLoggedIn bool     `json:"stay,omitempty"`
	jwt.RegisteredClaims
}

var _ SessionHandler = (*CookieSessions)(nil)

// CookieSessions stores the session as an HS256 JWT in an HttpOnly cookie.
// "Stay logged in" turns it into a persistent cookie with a longer lifetime.
type CookieSessions struct {
	secret      []byte
	issuer      string
	cookieName  string
	cookiePath  string
	secure      bool
	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// SessionOption configures CookieSessions.
type SessionOption func(*CookieSessions) error

// WithSessionTTL sets the lifetime of a regular (browser session) login.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *CookieSessions) error {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
		return nil
	}
}

// WithRememberTTL sets the lifetime of a "stay logged in" login.
func WithRememberTTL(ttl time.Duration) SessionOption {
	return func(s *CookieSessions) error {
		if ttl > 0 {
			s.rememberTTL = ttl
		}
		return nil
	}
}

// WithSecureCookie marks the cookie Secure.
func WithSecureCookie(secure bool) SessionOption {
	return func(s *CookieSessions) error {
		s.secure = secure
		return nil
	}
}

// WithCookiePath scopes the cookie, e.g. to the admin base path.
func WithCookiePath(path string) SessionOption {
	return func(s *CookieSessions) error {
		path = strings.TrimSpace(path)
		if path == "" || !strings.HasPrefix(path, "/") {
			return fmt.Errorf("auth: invalid cookie path %q", path)
		}
		s.cookiePath = path
		return nil
	}
}

// WithSessionClock overrides time source (useful for tests).
func WithSessionClock(fn func() time.Time) SessionOption {
	return func(s *CookieSessions) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewCookieSessions returns a session store signing with secret.
func NewCookieSessions(secret string, opts ...SessionOption) (*CookieSessions, error) {
	secret = strings.TrimSpace(secret)
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: session secret must be at least %d bytes", minSecretLength)
	}
	s := &CookieSessions{
		secret:      []byte(secret),
		issuer:      defaultIssuer,
		cookieName:  defaultCookieName,
		cookiePath:  "/",
		sessionTTL:  defaultSessionTTL,
		rememberTTL: defaultRememberTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *CookieSessions) SetAuthenticationCredentials(w http.ResponseWriter, _ *http.Request, emp employee.AuthenticatedEmployee, stayLoggedIn bool) error {
	if emp.ID == 0 || strings.TrimSpace(emp.Email) == "" {
		return errors.New("auth: employee identity is required")
	}
	ttl := s.sessionTTL
	if stayLoggedIn {
		ttl = s.rememberTTL
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)
	claims := SessionClaims{
		EmployeeID:   emp.ID,
		Roles:        dedupeRoles(emp.Roles),
		StayLoggedIn: stayLoggedIn,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   emp.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("auth: sign session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     s.cookieName,
		Value:    signed,
		Path:     s.cookiePath,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if stayLoggedIn {
		cookie.Expires = expiresAt
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Load returns the validated claims of the request's session cookie.
func (s *CookieSessions) Load(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return nil, ErrNoSession
	}
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.EmployeeID == 0 {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Clear expires the session cookie.
func (s *CookieSessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     s.cookiePath,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
