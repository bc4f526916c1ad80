package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"taskdeck.org/internal/auth"
)

var _ auth.UserStore = (*Store)(nil)

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx, `
		select id, email, password_hash, role, organization_id, created_at, updated_at
		from users
		where lower(email) = $1
	`, email)

	var (
		u       auth.User
		rawRole string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &rawRole, &u.OrganizationID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	role, err := auth.ParseRole(rawRole)
	if err != nil {
		return nil, err
	}
	u.Role = role
	return &u, nil
}
