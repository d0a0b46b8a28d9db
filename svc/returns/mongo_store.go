package returns

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongodb "github.com/dmitrymomot/storefront/pkg/mongo"
)

const (
	collectionName = "return_requests"
	sequenceName   = "return_requests"
)

// MongoStore persists return requests in MongoDB.
type MongoStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoStore stores return requests in the return_requests collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "requested_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "requested_at", Value: -1}}},
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, r Request) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Request, error) {
	var r Request
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, errors.Join(ErrStoreFailure, err)
	}
	return r, nil
}

func (s *MongoStore) ListByOrder(ctx context.Context, orderID string) ([]Request, error) {
	return s.find(ctx, bson.D{{Key: "order_id", Value: orderID}}, options.Find())
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]Request, error) {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	opts := options.Find()
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return s.find(ctx, filter, opts)
}

func (s *MongoStore) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]Request, error) {
	opts.SetSort(bson.D{{Key: "requested_at", Value: -1}, {Key: "number", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
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

// Transition replaces the document only if its lifecycle fields still match
// expect, so concurrent writers cannot both succeed.
func (s *MongoStore) Transition(ctx context.Context, id string, expect Stage, fn func(*Request)) (Request, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if current.Stage() != expect {
		return Request{}, ErrStageConflict
	}

	updated := cloneRequest(current)
	fn(&updated)

	filter := append(bson.D{{Key: "_id", Value: id}}, stageFilter(expect)...)
	var stored Request
	err = s.coll.FindOneAndReplace(ctx, filter, updated,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Request{}, ErrStageConflict
	}
	if err != nil {
		return Request{}, errors.Join(ErrStoreFailure, err)
	}
	return stored, nil
}

func (s *MongoStore) NextNumber(ctx context.Context) (int64, error) {
	n, err := mongodb.NextSequence(ctx, s.db, sequenceName)
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return n, nil
}

// stageFilter matches the persisted fields Request.Stage derives stage from.
func stageFilter(stage Stage) bson.D {
	switch stage {
	case StageRejected:
		return bson.D{{Key: "status", Value: StatusRejected}}
	case StageApproved:
		return bson.D{
			{Key: "status", Value: StatusApproved},
			{Key: "pickup_scheduled", Value: false},
			{Key: "user_handed_over", Value: false},
		}
	case StagePickupScheduled:
		return bson.D{
			{Key: "status", Value: StatusApproved},
			{Key: "pickup_scheduled", Value: true},
			{Key: "user_handed_over", Value: false},
		}
	case StageHandedOver:
		return bson.D{
			{Key: "status", Value: StatusApproved},
			{Key: "user_handed_over", Value: true},
		}
	default:
		return bson.D{{Key: "status", Value: StatusPending}}
	}
}
