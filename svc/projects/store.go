package projects

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store persists project requests.
type Store interface {
	Create(ctx context.Context, r Request) error
	List(ctx context.Context, limit, offset int) ([]Request, error)
}

// MemoryStore keeps project requests in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Request
}

// NewMemoryStore returns an empty in-memory project request store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Create(_ context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]Request, error) {
	s.mu.RLock()
	out := make([]Request, len(s.items))
	copy(out, s.items)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []Request{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// MongoStore persists project requests in MongoDB.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore stores project requests in the project_requests collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("project_requests")}
}

func (s *MongoStore) Create(ctx context.Context, r Request) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, limit, offset int) ([]Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	out := []Request{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return out, nil
}
