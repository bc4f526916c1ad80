package audit

import (
	"context"
	"errors"
	"time"
)

// Action names recorded in the trail. They match the wire-level vocabulary
// the dashboard consumes, so they are stable identifiers, not display text.
const (
	ActionAuthLogin  = "AUTH_LOGIN"
	ActionAuthDeny   = "AUTH_DENY"
	ActionTaskList   = "TASK_LIST"
	ActionTaskCreate = "TASK_CREATE"
	ActionTaskUpdate = "TASK_UPDATE"
	ActionTaskDelete = "TASK_DELETE"
	ActionTaskLookup = "TASK_LOOKUP"
	ActionAccessDeny = "ACCESS_DENY"
	ActionAuditView  = "AUDIT_VIEW"
)

// ErrWriteFailure marks a failed audit append. The triggering business
// operation has already committed by the time this surfaces; it is an
// operational signal, never an end-caller failure.
var ErrWriteFailure = errors.New("audit: write failure")

// Entry is an immutable record of an attempted or completed operation.
// Once appended it is never modified or deleted.
type Entry struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id,omitempty"`
	Allowed    bool           `json:"allowed"`
	Reason     string         `json:"reason,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Store appends and lists immutable entries.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]Entry, error)
}
