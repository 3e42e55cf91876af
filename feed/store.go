package feed

import (
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-activity-feed/pkg/types"
)

// Store is the ordered, deduplicated activity collection shared between the
// batch fetch path, live events, and the expiry scheduler. Every mutation
// recomputes the full projection from its inputs rather than patching
// incrementally, trading efficiency for correctness at the expected sizes
// (tens of entries).
type Store struct {
	mu         sync.RWMutex
	activities []types.Activity
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Merge prepends the incoming activities to the current contents, dedupes
// (first occurrence wins, so fresher entries beat stale duplicates), sorts
// descending by occurrence time, and installs the result. The new projection
// is returned.
func (s *Store) Merge(incoming []types.Activity) []types.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	combined := make([]types.Activity, 0, len(incoming)+len(s.activities))
	combined = append(combined, incoming...)
	combined = append(combined, s.activities...)
	s.activities = sortDescending(Dedupe(combined))
	return s.copyLocked()
}

// Prune drops everything at or before the cutoff, then re-applies dedup and
// sort. Idempotent when the store is already clean.
func (s *Store) Prune(cutoff time.Time) []types.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]types.Activity, 0, len(s.activities))
	for _, activity := range s.activities {
		if olderThan(activity, cutoff) {
			continue
		}
		kept = append(kept, activity)
	}
	s.activities = sortDescending(Dedupe(kept))
	return s.copyLocked()
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.activities = nil
	s.mu.Unlock()
}

// Snapshot returns a copy of the current projection.
func (s *Store) Snapshot() []types.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Len reports the number of stored activities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activities)
}

func (s *Store) copyLocked() []types.Activity {
	out := make([]types.Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

func sortDescending(activities []types.Activity) []types.Activity {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].OccurredAt.After(activities[j].OccurredAt)
	})
	return activities
}
