package receipts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"opevent/pkg/platform/uow"
)

// InMemoryStore keeps receipts in memory. Inside a unit of work a receipt
// becomes visible only when the unit commits.
type InMemoryStore struct {
	mu       sync.RWMutex
	receipts []Receipt
}

// NewInMemory returns an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Record stores r, deferring the write to commit when ctx carries a unit.
func (s *InMemoryStore) Record(ctx context.Context, r Receipt) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now()
	}
	write := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.receipts = append(s.receipts, r)
	}
	if u, ok := uow.From(ctx); ok {
		u.OnCommit(write)
		return nil
	}
	write()
	return nil
}

// ListRecent returns the newest receipts first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.receipts)
	slices.Reverse(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
