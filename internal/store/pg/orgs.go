package pg

import (
	"context"
	"database/sql"
	"errors"

	"taskdeck.org/internal/directory"
)

var _ directory.Store = (*Store)(nil)

func (s *Store) Find(ctx context.Context, id string) (*directory.Organization, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		select id, name, parent_org_id, created_at, updated_at
		from organizations
		where id = $1
	`, id)
	org, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Store) Children(ctx context.Context, parentID string) ([]directory.Organization, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, parent_org_id, created_at, updated_at
		from organizations
		where parent_org_id = $1
		order by name asc
	`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []directory.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrganization(row rowScanner) (*directory.Organization, error) {
	var (
		org    directory.Organization
		parent sql.NullString
	)
	if err := row.Scan(&org.ID, &org.Name, &parent, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		org.ParentOrgID = &parent.String
	}
	return &org, nil
}
