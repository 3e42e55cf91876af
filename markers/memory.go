package markers

import (
	"context"
	"sync"

	"github.com/goliatone/go-activity-feed/pkg/types"
)

// MemoryStore is an in-process marker store for tests and single-node setups
// that do not need acknowledgements to survive restarts.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemoryStore returns an empty in-memory marker store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

var _ types.ReadMarkerStore = (*MemoryStore)(nil)

// ListMarkers returns every acknowledged notification ID.
func (s *MemoryStore) ListMarkers(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkRead records an acknowledgement.
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
	return nil
}

// ClearMarkers removes all acknowledgements.
func (s *MemoryStore) ClearMarkers(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
	return nil
}
