package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopadmin.org/internal/employee"
)

type countingLookup struct {
	mu    sync.Mutex
	inner employee.Lookup
	calls int
}

func (c *countingLookup) ForAuthentication(ctx context.Context, q employee.GetForAuthentication) (employee.AuthenticatedEmployee, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.ForAuthentication(ctx, q)
}

func (c *countingLookup) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type brokenLookup struct{ err error }

func (b brokenLookup) ForAuthentication(context.Context, employee.GetForAuthentication) (employee.AuthenticatedEmployee, error) {
	return employee.AuthenticatedEmployee{}, b.err
}

// flakyCache misses on every read and fails every write.
type flakyCache struct {
	getErr error
	setErr error
	sets   int
}

func (f *flakyCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.getErr }
func (f *flakyCache) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return f.setErr
}
func (f *flakyCache) Delete(context.Context, string) error { return nil }

type staticRouter map[string]string

func (r staticRouter) Generate(name string) (string, error) {
	path, ok := r[name]
	if !ok {
		return "", errors.New("unknown route " + name)
	}
	return path, nil
}

var testRouter = staticRouter{LoginRoute: "/admin/login"}

const testPassword = "correct horse battery"

var (
	testHashOnce sync.Once
	testHash     string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		h, err := HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		testHash = h
	})
	return testHash
}

func newEmployees(t *testing.T) *employee.InMemory {
	t.Helper()
	store := employee.NewInMemory(employee.NewLinker("/admin"))
	store.Add(employee.Record{
		ID:           42,
		Email:        "demo@shop.test",
		PasswordHash: passwordHash(t),
		Active:       true,
		DefaultTab:   "AdminDashboard",
		Roles:        []string{"ROLE_MOD_TAB_ADMINORDERS_READ"},
	})
	return store
}
