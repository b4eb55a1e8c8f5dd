package auth

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
)

// User is the identity contract the login flow works with.
type User interface {
	Username() string
	PasswordHash() string
	Roles() []string
}

var _ User = (*Principal)(nil)

// Principal is an authenticated back office employee.
type Principal struct {
	id           int64
	username     string
	passwordHash string
	roles        []string
}

// NewPrincipal builds a principal; roles are trimmed and deduplicated.
func NewPrincipal(id int64, username, passwordHash string, roles []string) *Principal {
	return &Principal{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		roles:        dedupeRoles(roles),
	}
}

func (p *Principal) ID() int64            { return p.id }
func (p *Principal) Username() string     { return p.username }
func (p *Principal) PasswordHash() string { return p.passwordHash }

// Roles returns a copy of the principal's roles.
func (p *Principal) Roles() []string {
	return slices.Clone(p.roles)
}

// HasRole reports whether the principal was granted role.
func (p *Principal) HasRole(role string) bool {
	return slices.Contains(p.roles, strings.TrimSpace(role))
}

// principalRecord is the cached form of a Principal.
type principalRecord struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"`
	Roles        []string `json:"roles"`
}

func encodePrincipal(p *Principal) ([]byte, error) {
	return json.Marshal(principalRecord{
		ID:           p.id,
		Username:     p.username,
		PasswordHash: p.passwordHash,
		Roles:        p.roles,
	})
}

func decodePrincipal(raw []byte) (*Principal, error) {
	var rec principalRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.ID == 0 || rec.Username == "" {
		return nil, errors.New("auth: incomplete cached principal")
	}
	return NewPrincipal(rec.ID, rec.Username, rec.PasswordHash, rec.Roles), nil
}

func dedupeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	var normalized []string
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}
