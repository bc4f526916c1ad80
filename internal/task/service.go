package task

import (
	"context"
	"errors"
	"strings"

	"taskdeck.org/internal/audit"
	"taskdeck.org/internal/auth"
	"taskdeck.org/internal/obs"
	"taskdeck.org/internal/policy"
)

// ScopeResolver answers which organizations a principal may act within.
type ScopeResolver interface {
	ScopedOrgIDs(ctx context.Context, p auth.Principal) ([]string, error)
}

// AuditRecorder records every access decision and mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
	List(ctx context.Context) ([]audit.Entry, error)
}

// Service orchestrates task access. Every request walks the same path:
// resolve scope, check policy, execute against the store, then record the
// outcome, denials included. The store is never touched for a denied
// operation, and the audit write happens only after the mutation has
// committed.
//
// The service keeps no state between requests; concurrent invocations
// share nothing but the backing store and the audit trail.
type Service struct {
	store    Store
	scope    ScopeResolver
	recorder AuditRecorder
}

// NewService wires the orchestrator.
func NewService(store Store, scope ScopeResolver, recorder AuditRecorder) (*Service, error) {
	if store == nil {
		return nil, errors.New("task store is required")
	}
	if scope == nil {
		return nil, errors.New("scope resolver is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}
	return &Service{store: store, scope: scope, recorder: recorder}, nil
}

// List returns every task in the principal's scope, ordered for display.
// Listing never denies; the scope filters the result set instead.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]Task, error) {
	scope, err := s.scope.ScopedOrgIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.FindByOrgSet(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Entry{
		UserID:   p.SubjectID,
		Action:   audit.ActionTaskList,
		Resource: "Task",
		Allowed:  true,
		Details:  map[string]any{"org_ids": scope, "count": len(tasks)},
	})
	return tasks, nil
}

// Create persists a new task in the principal's own organization.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (*Task, error) {
	scope, err := s.scope.ScopedOrgIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	if d := policy.Authorize(p, policy.ActionCreate, p.OrgID, scope); !d.Allowed {
		return nil, s.deny(ctx, p, policy.ActionCreate, "Task", "", d.Reason)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &Task{
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Status:         in.Status,
		Order:          0,
		OrganizationID: p.OrgID,
		CreatedBy:      p.SubjectID,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, audit.Entry{
		UserID:     p.SubjectID,
		Action:     audit.ActionTaskCreate,
		Resource:   "Task",
		ResourceID: t.ID,
		Allowed:    true,
		Details:    map[string]any{"title": t.Title},
	})
	return t, nil
}

// Update applies a partial update to an existing task. Order changes from
// board drag/reorder flow through here like any other field; there is no
// privileged shortcut.
func (s *Service) Update(ctx context.Context, p auth.Principal, id string, in UpdateInput) (*Task, error) {
	scope, err := s.scope.ScopedOrgIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	// Role check against the principal's own org before the store is read:
	// the own org is always in scope, so this can only fail on role, and a
	// principal whose role can never mutate must not trigger a lookup.
	if d := policy.Authorize(p, policy.ActionUpdate, p.OrgID, scope); !d.Allowed {
		return nil, s.deny(ctx, p, policy.ActionUpdate, "Task", id, d.Reason)
	}
	existing, err := s.lookup(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if d := policy.Authorize(p, policy.ActionUpdate, existing.OrganizationID, scope); !d.Allowed {
		return nil, s.deny(ctx, p, policy.ActionUpdate, "Task", id, d.Reason)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if in.Order != nil {
		if err := s.store.Reindex(ctx, updated.OrganizationID, updated.Status); err != nil {
			return nil, err
		}
	}
	s.record(ctx, audit.Entry{
		UserID:     p.SubjectID,
		Action:     audit.ActionTaskUpdate,
		Resource:   "Task",
		ResourceID: id,
		Allowed:    true,
		Details:    in.diff(),
	})
	return updated, nil
}

// Remove hard-deletes an existing task.
func (s *Service) Remove(ctx context.Context, p auth.Principal, id string) error {
	scope, err := s.scope.ScopedOrgIDs(ctx, p)
	if err != nil {
		return err
	}
	if d := policy.Authorize(p, policy.ActionDelete, p.OrgID, scope); !d.Allowed {
		return s.deny(ctx, p, policy.ActionDelete, "Task", id, d.Reason)
	}
	existing, err := s.lookup(ctx, p, id)
	if err != nil {
		return err
	}
	if d := policy.Authorize(p, policy.ActionDelete, existing.OrganizationID, scope); !d.Allowed {
		return s.deny(ctx, p, policy.ActionDelete, "Task", id, d.Reason)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.Entry{
		UserID:     p.SubjectID,
		Action:     audit.ActionTaskDelete,
		Resource:   "Task",
		ResourceID: id,
		Allowed:    true,
	})
	return nil
}

// AuditLog returns the audit trail, newest first. Viewers are denied
// before the recorder is reached.
func (s *Service) AuditLog(ctx context.Context, p auth.Principal) ([]audit.Entry, error) {
	if d := policy.Authorize(p, policy.ActionAuditView, "", nil); !d.Allowed {
		return nil, s.deny(ctx, p, policy.ActionAuditView, "AuditLog", "", d.Reason)
	}
	entries, err := s.recorder.List(ctx)
	if err != nil {
		return nil, err
	}
	s.record(ctx, audit.Entry{
		UserID:   p.SubjectID,
		Action:   audit.ActionAuditView,
		Resource: "AuditLog",
		Allowed:  true,
		Details:  map[string]any{"count": len(entries)},
	})
	return entries, nil
}

// lookup fetches the target task before the policy check. A missing id is
// a lookup failure, not a denial: it is audited as such and surfaced as
// NotFound, so the two outcomes stay distinguishable for honest callers
// while a scope denial still reveals nothing about foreign organizations.
func (s *Service) lookup(ctx context.Context, p auth.Principal, id string) (*Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.record(ctx, audit.Entry{
				UserID:     p.SubjectID,
				Action:     audit.ActionTaskLookup,
				Resource:   "Task",
				ResourceID: id,
				Allowed:    true,
				Details:    map[string]any{"outcome": "not_found"},
			})
		}
		return nil, err
	}
	return existing, nil
}

// deny records the denial and returns the uniform Forbidden error. The
// denial event must not be lost even when the audit backing store is
// struggling; Record escalates that case itself.
func (s *Service) deny(ctx context.Context, p auth.Principal, action policy.Action, resource, resourceID, reason string) error {
	obs.IncAuthzDenial(string(action))
	s.record(ctx, audit.Entry{
		UserID:     p.SubjectID,
		Action:     audit.ActionAccessDeny,
		Resource:   resource,
		ResourceID: resourceID,
		Allowed:    false,
		Reason:     reason,
		Details:    map[string]any{"action": string(action), "role": string(p.Role), "org_id": p.OrgID},
	})
	return ErrForbidden
}

// record appends an audit entry. A write failure has already been logged
// and counted by the recorder; it must not overturn the committed
// business operation, so it is deliberately not propagated.
func (s *Service) record(ctx context.Context, entry audit.Entry) {
	_ = s.recorder.Record(ctx, entry)
}
