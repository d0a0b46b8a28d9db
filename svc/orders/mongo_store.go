package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongodb "github.com/dmitrymomot/storefront/pkg/mongo"
)

const (
	collectionName = "orders"
	sequenceName   = "orders"
)

// MongoStore persists orders in MongoDB.
type MongoStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoStore stores orders in the orders collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the lookup indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return errors.Join(ErrOrderStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, o Order) error {
	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return errors.Join(ErrOrderStoreFailure, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, errors.Join(ErrOrderStoreFailure, err)
	}
	return o, nil
}

func (s *MongoStore) SetStatus(ctx context.Context, id string, expect, next Status, at time.Time) (Order, error) {
	var o Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: expect}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: next},
			{Key: "updated_at", Value: at},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// distinguish a missing order from a lost race
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return Order{}, getErr
		}
		return Order{}, ErrStatusConflict
	}
	if err != nil {
		return Order{}, errors.Join(ErrOrderStoreFailure, err)
	}
	return o, nil
}

func (s *MongoStore) NextNumber(ctx context.Context) (int64, error) {
	n, err := mongodb.NextSequence(ctx, s.db, sequenceName)
	if err != nil {
		return 0, errors.Join(ErrOrderStoreFailure, err)
	}
	return n, nil
}
