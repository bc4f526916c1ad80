// Package ids issues the identifiers shared by tasks, organizations,
// users, audit entries and request tracing.
package ids

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a lexicographically sortable identifier. All entity kinds
// share one id space, so insertion order is recoverable from the id
// alone when timestamps tie.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}
