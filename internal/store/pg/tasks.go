package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskdeck.org/internal/ids"
	"taskdeck.org/internal/task"
)

var _ task.Store = (*Store)(nil)

const taskColumns = `id, title, description, category, status, position, organization_id, created_by, created_at, updated_at`

func (s *Store) Create(ctx context.Context, t *task.Task) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if t.ID == "" {
		t.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into tasks (id, title, description, category, status, position, organization_id, created_by)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning created_at, updated_at
	`, t.ID, t.Title, t.Description, t.Category, t.Status, t.Order, t.OrganizationID, t.CreatedBy)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: unknown organization or creator", task.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*task.Task, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		select `+taskColumns+`
		from tasks
		where id = $1
	`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) FindByOrgSet(ctx context.Context, orgIDs []string) ([]task.Task, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	if len(orgIDs) == 0 {
		return []task.Task{}, nil
	}

	placeholders := make([]string, len(orgIDs))
	args := make([]any, len(orgIDs))
	for i, id := range orgIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `
		select ` + taskColumns + `
		from tasks
		where organization_id in (` + strings.Join(placeholders, ", ") + `)
		order by position asc, updated_at desc
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update serializes concurrent writes to the same task via a row lock, so
// the last writer wins on the locked row rather than on network arrival
// order.
func (s *Store) Update(ctx context.Context, id string, in task.UpdateInput) (*task.Task, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked int
	if err := tx.QueryRowContext(ctx, `select 1 from tasks where id = $1 for update`, id).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}

	var (
		sets []string
		args []any
		idx  = 1
	)
	if in.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", idx))
		args = append(args, *in.Title)
		idx++
	}
	if in.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", idx))
		args = append(args, *in.Description)
		idx++
	}
	if in.Category != nil {
		sets = append(sets, fmt.Sprintf("category = $%d", idx))
		args = append(args, *in.Category)
		idx++
	}
	if in.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", idx))
		args = append(args, *in.Status)
		idx++
	}
	if in.Order != nil {
		sets = append(sets, fmt.Sprintf("position = $%d", idx))
		args = append(args, *in.Order)
		idx++
	}
	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`update tasks set %s where id = $%d returning `+taskColumns, strings.Join(sets, ", "), idx)
	args = append(args, id)

	t, err := scanTask(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from tasks where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Reindex renumbers one organization's column to a dense 0..n-1 sequence,
// preserving the display order. updated_at is left untouched: reindexing
// is bookkeeping, not an edit.
func (s *Store) Reindex(ctx context.Context, orgID string, status task.Status) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	_, err := s.db.ExecContext(ctx, `
		with ranked as (
			select id, row_number() over (order by position asc, updated_at desc) - 1 as rn
			from tasks
			where organization_id = $1 and status = $2
		)
		update tasks set position = ranked.rn
		from ranked
		where tasks.id = ranked.id and tasks.position <> ranked.rn
	`, orgID, status)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Status, &t.Order,
		&t.OrganizationID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
