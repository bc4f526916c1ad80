package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskdeck.org/internal/auth"
)

// Organization is one node of the two-level hierarchy: either a root
// (ParentOrgID nil) or a direct child of a root. The directory only reads;
// an external admin workflow owns creation and removal.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ParentOrgID *string   `json:"parent_org_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store reads organization rows from the backing store.
type Store interface {
	Find(ctx context.Context, id string) (*Organization, error)
	Children(ctx context.Context, parentID string) ([]Organization, error)
}

// ErrNotFound marks a lookup for an organization that does not exist.
var ErrNotFound = errors.New("directory: organization not found")

const defaultCacheTTL = 5 * time.Second

// Directory answers which organizations a principal's scope includes.
// The hierarchy is read-mostly, so child lookups are cached briefly; the
// TTL is kept short because a stale cache must never widen an Owner's
// scope after a reparenting.
type Directory struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]scopeEntry
}

type scopeEntry struct {
	ids       []string
	expiresAt time.Time
}

// Option configures Directory behavior.
type Option func(*Directory)

// WithCacheTTL overrides the child-lookup cache lifetime. Zero disables
// caching entirely.
func WithCacheTTL(ttl time.Duration) Option {
	return func(d *Directory) { d.ttl = ttl }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(d *Directory) {
		if fn != nil {
			d.now = fn
		}
	}
}

// New constructs a Directory over the given store.
func New(store Store, opts ...Option) (*Directory, error) {
	if store == nil {
		return nil, errors.New("organization store is required")
	}
	d := &Directory{
		store: store,
		ttl:   defaultCacheTTL,
		now:   time.Now,
		cache: make(map[string]scopeEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ScopedOrgIDs resolves the set of organization ids the principal may act
// within. Owners see their own org plus its direct children (the hierarchy
// is capped at two levels, so that is exhaustive); Admins and Viewers see
// their own org only. Errors here are transient store failures, never
// denials.
func (d *Directory) ScopedOrgIDs(ctx context.Context, p auth.Principal) ([]string, error) {
	if p.Role != auth.RoleOwner {
		return []string{p.OrgID}, nil
	}
	if ids, ok := d.cached(p.OrgID); ok {
		return ids, nil
	}
	children, err := d.store.Children(ctx, p.OrgID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(children)+1)
	ids = append(ids, p.OrgID)
	for _, child := range children {
		ids = append(ids, child.ID)
	}
	d.remember(p.OrgID, ids)
	return ids, nil
}

// Invalidate drops the cached scope for an organization, e.g. after the
// admin workflow reparents a child.
func (d *Directory) Invalidate(orgID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cache, orgID)
}

func (d *Directory) cached(orgID string) ([]string, bool) {
	if d.ttl <= 0 {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.cache[orgID]
	if !ok || d.now().After(entry.expiresAt) {
		return nil, false
	}
	out := make([]string, len(entry.ids))
	copy(out, entry.ids)
	return out, true
}

func (d *Directory) remember(orgID string, ids []string) {
	if d.ttl <= 0 {
		return
	}
	stored := make([]string, len(ids))
	copy(stored, ids)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache[orgID] = scopeEntry{ids: stored, expiresAt: d.now().Add(d.ttl)}
}
