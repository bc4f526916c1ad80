package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskdeck.org/internal/ids"
	"taskdeck.org/internal/obs"
)

// Recorder is the audit trail front door. Appends are best-effort but never
// silently swallowed: a rejected write is logged, counted and returned as
// ErrWriteFailure so callers can decide whether it matters, while the
// already-committed business mutation stands.
type Recorder struct {
	store Store
	now   func() time.Time
}

// RecorderOption configures Recorder behavior.
type RecorderOption func(*Recorder)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRecorder constructs a Recorder over the given store.
func NewRecorder(store Store, opts ...RecorderOption) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Record normalizes and appends an entry. Server-assigned fields (id,
// timestamp) are filled here so every producer writes through one path.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}
	if entry.Details != nil {
		copied := make(map[string]any, len(entry.Details))
		for k, v := range entry.Details {
			copied[k] = v
		}
		entry.Details = copied
	}

	if err := r.store.Append(ctx, &entry); err != nil {
		r.escalate(entry, err)
		return fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	return nil
}

// List returns the trail in reverse chronological order. Privilege checks
// happen one layer up; every caller able to reach this is already trusted.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	return r.store.List(ctx)
}

func (r *Recorder) escalate(entry Entry, err error) {
	obs.IncAuditWriteFailure()
	obs.LogRequest(map[string]any{
		"ts":       r.now().UTC().Format(time.RFC3339Nano),
		"level":    "error",
		"msg":      "audit_write_failed",
		"action":   entry.Action,
		"resource": entry.Resource,
		"user_id":  entry.UserID,
		"error":    err.Error(),
	})
}
