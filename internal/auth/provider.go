package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shopadmin.org/internal/cache"
	"shopadmin.org/internal/employee"
	"shopadmin.org/internal/obs"
)

const defaultPrincipalTTL = 10 * time.Minute

// UserProvider resolves users for the login flow and for session refresh.
type UserProvider interface {
	LoadUserByUsername(ctx context.Context, username string) (User, error)
	RefreshUser(ctx context.Context, user User) (User, error)
	SupportsClass(v any) bool
}

var _ UserProvider = (*EmployeeProvider)(nil)

// EmployeeProvider resolves employees cache-first. Concurrent misses on the
// same username may both reach the lookup; the last cache write wins.
type EmployeeProvider struct {
	cache  cache.Store
	lookup employee.Lookup
	ttl    time.Duration
}

// ProviderOption configures EmployeeProvider.
type ProviderOption func(*EmployeeProvider)

// WithPrincipalTTL sets how long a resolved principal stays cached.
func WithPrincipalTTL(ttl time.Duration) ProviderOption {
	return func(p *EmployeeProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func NewEmployeeProvider(store cache.Store, lookup employee.Lookup, opts ...ProviderOption) *EmployeeProvider {
	p := &EmployeeProvider{
		cache:  store,
		lookup: lookup,
		ttl:    defaultPrincipalTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadUserByUsername returns the cached principal for username, or resolves it
// through the employee lookup and caches it. Unknown employees yield a
// *UsernameNotFoundError.
func (p *EmployeeProvider) LoadUserByUsername(ctx context.Context, username string) (User, error) {
	principal, err := p.load(ctx, username)
	if err != nil {
		return nil, err
	}
	return principal, nil
}

func (p *EmployeeProvider) load(ctx context.Context, username string) (*Principal, error) {
	key := cache.Key(username)
	logger := obs.L(ctx)

	raw, hit, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn("employee cache read failed", zap.String("cache_key", key), zap.Error(err))
	case hit:
		principal, err := decodePrincipal(raw)
		if err == nil {
			return principal, nil
		}
		logger.Warn("discarding undecodable cached principal", zap.String("cache_key", key), zap.Error(err))
	}

	emp, err := p.lookup.ForAuthentication(ctx, employee.GetForAuthentication{Email: username})
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, &UsernameNotFoundError{Username: username}
		}
		return nil, fmt.Errorf("auth: load employee: %w", err)
	}

	principal := NewPrincipal(emp.ID, emp.Email, emp.PasswordHash, emp.Roles)
	encoded, err := encodePrincipal(principal)
	if err == nil {
		err = p.cache.Set(ctx, key, encoded, p.ttl)
	}
	if err != nil {
		logger.Warn("employee cache write failed", zap.String("cache_key", key), zap.Error(err))
	}
	return principal, nil
}

// RefreshUser reloads user by username. It goes through the cache, so it can
// return a cached principal until the entry expires or is evicted.
func (p *EmployeeProvider) RefreshUser(ctx context.Context, user User) (User, error) {
	principal, ok := user.(*Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("%w: instances of %T are not supported", ErrUnsupportedUser, user)
	}
	return p.LoadUserByUsername(ctx, principal.Username())
}

// SupportsClass reports whether v is a principal produced by this provider.
func (p *EmployeeProvider) SupportsClass(v any) bool {
	switch v.(type) {
	case *Principal, Principal:
		return true
	default:
		return false
	}
}

// Evict drops the cached principal for username.
func (p *EmployeeProvider) Evict(ctx context.Context, username string) error {
	return p.cache.Delete(ctx, cache.Key(username))
}
