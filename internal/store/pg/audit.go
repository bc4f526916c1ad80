package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"taskdeck.org/internal/audit"
)

var _ audit.Store = (*Store)(nil)

// Append inserts one audit row. The table is append-only; there is no
// update or delete path anywhere in this package.
func (s *Store) Append(ctx context.Context, e *audit.Entry) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var details any
	if len(e.Details) > 0 {
		encoded, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		details = encoded
	}
	_, err := s.db.ExecContext(ctx, `
		insert into audit_log (id, user_id, action, resource, resource_id, allowed, reason, details, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, nullIfEmpty(e.UserID), e.Action, e.Resource, nullIfEmpty(e.ResourceID), e.Allowed, nullIfEmpty(e.Reason), details, e.Timestamp)
	return err
}

// List returns the full trail, newest first. The id tiebreak keeps the
// ordering stable for entries sharing a timestamp; ULIDs sort by creation
// time.
func (s *Store) List(ctx context.Context) ([]audit.Entry, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, action, resource, resource_id, allowed, reason, details, created_at
		from audit_log
		order by created_at desc, id desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []audit.Entry{}
	for rows.Next() {
		var (
			e          audit.Entry
			userID     sql.NullString
			resourceID sql.NullString
			reason     sql.NullString
			details    []byte
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.Resource, &resourceID, &e.Allowed, &reason, &details, &e.Timestamp); err != nil {
			return nil, err
		}
		e.UserID = userID.String
		e.ResourceID = resourceID.String
		e.Reason = reason.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
