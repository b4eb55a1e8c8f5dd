// Package employee resolves back office employees for authentication.
package employee

import (
	"context"
	"errors"
	"strings"
)

// RoleEmployee is granted to every authenticated employee.
const RoleEmployee = "ROLE_EMPLOYEE"

// ErrNotFound reports that no active employee matches the query.
var ErrNotFound = errors.New("employee: not found")

// AuthenticatedEmployee is the lookup result used by the login flow.
type AuthenticatedEmployee struct {
	ID             int64
	Email          string
	PasswordHash   string
	Roles          []string
	DefaultPageURL string
}

// GetForAuthentication queries an employee by email.
type GetForAuthentication struct {
	Email string
}

// Normalized returns the lower-cased, trimmed email used for matching.
func (q GetForAuthentication) Normalized() string {
	return strings.ToLower(strings.TrimSpace(q.Email))
}

// Lookup resolves employees for authentication. Implementations return
// ErrNotFound when no active employee matches.
type Lookup interface {
	ForAuthentication(ctx context.Context, q GetForAuthentication) (AuthenticatedEmployee, error)
}

// Record is the stored shape of an employee.
type Record struct {
	ID           int64
	Email        string
	PasswordHash string
	Active       bool
	DefaultTab   string
	ProfileID    int64
	Roles        []string // granted through the profile
}

func (r Record) authenticated(links Linker) AuthenticatedEmployee {
	return AuthenticatedEmployee{
		ID:             r.ID,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Roles:          normalizeRoles(r.Roles),
		DefaultPageURL: links.DefaultPage(r.DefaultTab),
	}
}

// normalizeRoles trims, dedupes and always includes RoleEmployee first.
func normalizeRoles(roles []string) []string {
	out := []string{RoleEmployee}
	seen := map[string]struct{}{RoleEmployee: {}}
	for _, role := range roles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
