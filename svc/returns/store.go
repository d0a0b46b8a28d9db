package returns

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// Filter narrows the admin listing.
type Filter struct {
	Status Status
	Limit  int
	Offset int
}

// Store persists return requests.
type Store interface {
	Create(ctx context.Context, r Request) error
	// Get returns ErrRequestNotFound for unknown ids.
	Get(ctx context.Context, id string) (Request, error)
	ListByOrder(ctx context.Context, orderID string) ([]Request, error)
	List(ctx context.Context, f Filter) ([]Request, error)
	// Transition applies fn only while the stored request is still at stage
	// expect, otherwise it returns ErrStageConflict.
	Transition(ctx context.Context, id string, expect Stage, fn func(*Request)) (Request, error)
	NextNumber(ctx context.Context) (int64, error)
}

// MemoryStore keeps return requests in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]Request
	seq      int64
}

// NewMemoryStore returns an empty in-memory return request store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]Request)}
}

func (s *MemoryStore) Create(_ context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	return cloneRequest(r), nil
}

func (s *MemoryStore) ListByOrder(_ context.Context, orderID string) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Request{}
	for _, r := range s.requests {
		if r.OrderID == orderID {
			out = append(out, cloneRequest(r))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Request{}
	for _, r := range s.requests {
		if f.Status == "" || r.Status == f.Status {
			out = append(out, cloneRequest(r))
		}
	}
	sortNewestFirst(out)

	if f.Offset >= len(out) {
		return []Request{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Transition(_ context.Context, id string, expect Stage, fn func(*Request)) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	if r.Stage() != expect {
		return Request{}, ErrStageConflict
	}
	r = cloneRequest(r)
	fn(&r)
	s.requests[id] = r
	return cloneRequest(r), nil
}

func (s *MemoryStore) NextNumber(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func cloneRequest(r Request) Request {
	r.Images = slices.Clone(r.Images)
	return r
}

func sortNewestFirst(items []Request) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].RequestedAt.Equal(items[j].RequestedAt) {
			return items[i].Number > items[j].Number
		}
		return items[i].RequestedAt.After(items[j].RequestedAt)
	})
}
