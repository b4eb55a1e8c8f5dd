package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var _ Lookup = (*PGStore)(nil)

// PGStore implements Lookup over the employees schema in PostgreSQL.
type PGStore struct {
	db    *sql.DB
	links Linker
}

func NewPGStore(db *sql.DB, links Linker) *PGStore {
	return &PGStore{db: db, links: links}
}

func (s *PGStore) ForAuthentication(ctx context.Context, q GetForAuthentication) (AuthenticatedEmployee, error) {
	email := q.Normalized()
	if email == "" {
		return AuthenticatedEmployee{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`select id, email, passwd, active, default_tab, profile_id from employees where lower(email)=$1`, email)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &rec.Active, &rec.DefaultTab, &rec.ProfileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AuthenticatedEmployee{}, ErrNotFound
		}
		return AuthenticatedEmployee{}, fmt.Errorf("employee: query %s: %w", email, err)
	}
	if !rec.Active {
		return AuthenticatedEmployee{}, ErrNotFound
	}

	roles, err := s.profileRoles(ctx, rec.ProfileID)
	if err != nil {
		return AuthenticatedEmployee{}, err
	}
	rec.Roles = roles
	return rec.authenticated(s.links), nil
}

func (s *PGStore) profileRoles(ctx context.Context, profileID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select role from profile_roles where profile_id=$1 order by role`, profileID)
	if err != nil {
		return nil, fmt.Errorf("employee: query roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Save inserts or updates an employee by email and grants rec.Roles to its
// profile. It returns the employee id.
func (s *PGStore) Save(ctx context.Context, rec Record) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(rec.Email))
	if email == "" || rec.PasswordHash == "" {
		return 0, errors.New("employee: email and password hash are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("employee: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
insert into employees (email, passwd, active, default_tab, profile_id)
values ($1, $2, $3, $4, $5)
on conflict (email) do update
   set passwd = excluded.passwd,
       active = excluded.active,
       default_tab = excluded.default_tab,
       profile_id = excluded.profile_id
returning id`, email, rec.PasswordHash, rec.Active, rec.DefaultTab, rec.ProfileID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("employee: upsert %s: %w", email, err)
	}

	for _, role := range rec.Roles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role == "" || role == RoleEmployee {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`insert into profile_roles (profile_id, role) values ($1, $2) on conflict do nothing`,
			rec.ProfileID, role); err != nil {
			return 0, fmt.Errorf("employee: grant %s: %w", role, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("employee: commit: %w", err)
	}
	return id, nil
}
