package settings

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store persists the settings singleton.
type Store interface {
	// Load returns ErrSettingsNotFound when nothing was saved yet.
	Load(ctx context.Context) (NotificationSettings, error)
	Save(ctx context.Context, s NotificationSettings) error
}

// MemoryStore keeps settings in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	value *NotificationSettings
}

// NewMemoryStore returns a store holding no settings yet.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (NotificationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == nil {
		return NotificationSettings{}, ErrSettingsNotFound
	}
	return m.value.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s NotificationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := s.Clone()
	m.value = &v
	return nil
}

const (
	collectionName = "settings"
	documentID     = "notifications"
)

// MongoStore keeps settings as a single document.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore keeps the settings document in Mongo.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

type settingsDocument struct {
	ID                   string `bson:"_id"`
	NotificationSettings `bson:",inline"`
}

func (m *MongoStore) Load(ctx context.Context) (NotificationSettings, error) {
	var doc settingsDocument
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: documentID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotificationSettings{}, ErrSettingsNotFound
	}
	if err != nil {
		return NotificationSettings{}, err
	}
	return doc.NotificationSettings.Clone(), nil
}

func (m *MongoStore) Save(ctx context.Context, s NotificationSettings) error {
	_, err := m.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: documentID}},
		settingsDocument{ID: documentID, NotificationSettings: s},
		options.Replace().SetUpsert(true),
	)
	return err
}
