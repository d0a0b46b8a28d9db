package orders

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps orders in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
	seq    int64
}

// NewMemoryStore returns an empty in-memory order store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]Order)}
}

func (s *MemoryStore) Create(_ context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = clone(o)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return clone(o), nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id string, expect, next Status, at time.Time) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	if o.Status != expect {
		return Order{}, ErrStatusConflict
	}
	o.Status = next
	o.UpdatedAt = at
	s.orders[id] = o
	return clone(o), nil
}

func (s *MemoryStore) NextNumber(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func clone(o Order) Order {
	o.Items = slices.Clone(o.Items)
	return o
}
