package task

import "context"

// Store owns task persistence. It applies no authorization: every
// operation is keyed by explicit task id or organization id set, and the
// access service above it decides what may be asked for.
type Store interface {
	// Create persists a fully-populated task (id and timestamps assigned
	// by the store).
	Create(ctx context.Context, t *Task) error

	// FindByID returns ErrNotFound for an absent id.
	FindByID(ctx context.Context, id string) (*Task, error)

	// FindByOrgSet lists tasks owned by any of the given organizations,
	// ordered ascending by Order with UpdatedAt descending as tiebreak.
	FindByOrgSet(ctx context.Context, orgIDs []string) ([]Task, error)

	// Update applies the partial field set, refreshes UpdatedAt and
	// returns the stored row. Updates to the same task are serialized by
	// row-level locking; ErrNotFound for an absent id.
	Update(ctx context.Context, id string, in UpdateInput) (*Task, error)

	// Delete hard-deletes; no tombstones are kept, history lives in the
	// audit trail. ErrNotFound for an absent id.
	Delete(ctx context.Context, id string) error

	// Reindex renumbers the display order of one organization's tasks in
	// one status column to a dense 0..n-1 sequence.
	Reindex(ctx context.Context, orgID string, status Status) error
}
