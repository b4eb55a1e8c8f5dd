package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopadmin.org/internal/employee"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testEmployee = employee.AuthenticatedEmployee{
	ID:             7,
	Email:          "demo@shop.test",
	Roles:          []string{employee.RoleEmployee, "ROLE_MOD_TAB_ADMINORDERS_READ"},
	DefaultPageURL: "/admin/dashboard",
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == defaultCookieName {
			return c
		}
	}
	t.Fatalf("session cookie %q not set", defaultCookieName)
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return req
}

func TestNewCookieSessionsRejectsShortSecret(t *testing.T) {
	if _, err := NewCookieSessions("short"); err == nil {
		t.Fatalf("expected error for short secret")
	}
	if _, err := NewCookieSessions(testSecret, WithCookiePath("admin")); err == nil {
		t.Fatalf("expected error for relative cookie path")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	sessions, err := NewCookieSessions(testSecret, WithCookiePath("/admin"))
	if err != nil {
		t.Fatalf("NewCookieSessions: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := sessions.SetAuthenticationCredentials(rec, nil, testEmployee, false); err != nil {
		t.Fatalf("SetAuthenticationCredentials: %v", err)
	}
	cookie := sessionCookie(t, rec)
	if !cookie.HttpOnly || cookie.Path != "/admin" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	if cookie.MaxAge != 0 || !cookie.Expires.IsZero() {
		t.Fatalf("regular login should use a browser-session cookie: %+v", cookie)
	}

	claims, err := sessions.Load(requestWith(cookie))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if claims.Subject != "demo@shop.test" || claims.EmployeeID != 7 || claims.StayLoggedIn {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id")
	}
}

func TestSessionStayLoggedInIsPersistent(t *testing.T) {
	sessions, err := NewCookieSessions(testSecret, WithRememberTTL(48*time.Hour))
	if err != nil {
		t.Fatalf("NewCookieSessions: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := sessions.SetAuthenticationCredentials(rec, nil, testEmployee, true); err != nil {
		t.Fatalf("SetAuthenticationCredentials: %v", err)
	}
	cookie := sessionCookie(t, rec)
	if cookie.MaxAge != int((48 * time.Hour).Seconds()) {
		t.Fatalf("expected persistent cookie, max-age=%d", cookie.MaxAge)
	}
	claims, err := sessions.Load(requestWith(cookie))
	if err != nil || !claims.StayLoggedIn {
		t.Fatalf("expected stay-logged-in claims, err=%v", err)
	}
}

func TestSessionLoadFailures(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	sessions, err := NewCookieSessions(testSecret, WithSessionTTL(time.Minute), WithSessionClock(clock))
	if err != nil {
		t.Fatalf("NewCookieSessions: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := sessions.SetAuthenticationCredentials(rec, nil, testEmployee, false); err != nil {
		t.Fatalf("SetAuthenticationCredentials: %v", err)
	}
	cookie := sessionCookie(t, rec)

	if _, err := sessions.Load(requestWith(nil)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	tampered := *cookie
	parts := strings.Split(cookie.Value, ".")
	parts[1] = parts[1] + "e30"
	tampered.Value = strings.Join(parts, ".")
	if _, err := sessions.Load(requestWith(&tampered)); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for tampered token, got %v", err)
	}

	other, _ := NewCookieSessions(strings.Repeat("z", 40))
	if _, err := other.Load(requestWith(cookie)); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for foreign key, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := sessions.Load(requestWith(cookie)); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after expiry, got %v", err)
	}
}

func TestSessionRequiresIdentity(t *testing.T) {
	sessions, _ := NewCookieSessions(testSecret)
	err := sessions.SetAuthenticationCredentials(httptest.NewRecorder(), nil, employee.AuthenticatedEmployee{}, false)
	if err == nil {
		t.Fatalf("expected error for empty employee")
	}
}

func TestSessionClear(t *testing.T) {
	sessions, _ := NewCookieSessions(testSecret)
	rec := httptest.NewRecorder()
	sessions.Clear(rec)
	cookie := sessionCookie(t, rec)
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected expired cookie, got %+v", cookie)
	}
}
