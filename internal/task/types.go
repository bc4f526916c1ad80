package task

import (
	"fmt"
	"strings"
	"time"
)

// Status is a task's board column.
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Valid reports whether the status is one of the three board columns.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Task is a shared work item owned by exactly one organization. Order is a
// per-status display ranking hint; it need not be contiguous and ties are
// broken by UpdatedAt descending.
type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Status         Status    `json:"status"`
	Order          int       `json:"order"`
	OrganizationID string    `json:"organization_id"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateInput carries the caller-settable fields for a new task. The
// owning organization and creator come from the principal, never from
// input.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Status      Status
}

func (in *CreateInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, in.Status)
	}
	return nil
}

// UpdateInput is the partial field set for a task update. The owning
// organization and creator are immutable after creation and are therefore
// not representable here at all.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Status      *Status
	Order       *int
}

// IsZero reports whether no field is set.
func (in UpdateInput) IsZero() bool {
	return in.Title == nil && in.Description == nil && in.Category == nil &&
		in.Status == nil && in.Order == nil
}

func (in *UpdateInput) validate() error {
	if in.IsZero() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if trimmed == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		in.Title = &trimmed
	}
	if in.Status != nil && !in.Status.Valid() {
		return fmt.Errorf("%w: unsupported status %q", ErrInvalidInput, *in.Status)
	}
	if in.Order != nil && *in.Order < 0 {
		return fmt.Errorf("%w: order must be >= 0", ErrInvalidInput)
	}
	return nil
}

// diff flattens the set fields for the audit trail.
func (in UpdateInput) diff() map[string]any {
	out := map[string]any{}
	if in.Title != nil {
		out["title"] = *in.Title
	}
	if in.Description != nil {
		out["description"] = *in.Description
	}
	if in.Category != nil {
		out["category"] = *in.Category
	}
	if in.Status != nil {
		out["status"] = string(*in.Status)
	}
	if in.Order != nil {
		out["order"] = *in.Order
	}
	return out
}
