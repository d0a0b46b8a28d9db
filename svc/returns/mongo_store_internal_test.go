package returns

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	mongodb "github.com/dmitrymomot/storefront/pkg/mongo"
)

func requestsByStage() map[Stage]Request {
	pickup := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	return map[Stage]Request{
		StagePending:         {ID: "pending", Status: StatusPending},
		StageRejected:        {ID: "rejected", Status: StatusRejected},
		StageApproved:        {ID: "approved", Status: StatusApproved},
		StagePickupScheduled: {ID: "scheduled", Status: StatusApproved, PickupScheduled: true, PickupDate: &pickup},
		StageHandedOver:      {ID: "handed", Status: StatusApproved, PickupScheduled: true, PickupDate: &pickup, UserHandedOver: true},
	}
}

// matches evaluates an equality-only filter against the stored form of r.
func matches(t *testing.T, filter bson.D, r Request) bool {
	t.Helper()
	raw, err := bson.Marshal(r)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	for _, e := range filter {
		v, ok := doc[e.Key]
		if !ok || fmt.Sprint(v) != fmt.Sprint(e.Value) {
			return false
		}
	}
	return true
}

func TestStageFilter_MatchesOnlyItsStage(t *testing.T) {
	t.Parallel()

	samples := requestsByStage()
	for stage := range samples {
		t.Run(string(stage), func(t *testing.T) {
			t.Parallel()

			filter := stageFilter(stage)
			require.NotEmpty(t, filter)
			assert.Equal(t, "status", filter[0].Key)

			for other, r := range samples {
				require.Equal(t, other, r.Stage())
				assert.Equal(t, other == stage, matches(t, filter, r),
					"filter for %s against a %s request", stage, other)
			}
		})
	}
}

func newTestMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := mongodb.New(ctx, mongodb.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	require.NoError(t, err)

	db := client.Database("storefront_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoStore(db)
}

func TestMongoStore_TransitionRejectsConcurrentChange(t *testing.T) {
	t.Parallel()

	store := newTestMongoStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureIndexes(ctx))
	require.NoError(t, store.Create(ctx, Request{ID: "rr-1", Number: "RR-000001", Status: StatusPending}))

	// another writer rejects the request between our read and our replace
	_, err := store.Transition(ctx, "rr-1", StagePending, func(r *Request) {
		_, uerr := store.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: "rr-1"}},
			bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: StatusRejected}}}})
		require.NoError(t, uerr)
		r.Status = StatusApproved
	})
	require.ErrorIs(t, err, ErrStageConflict)

	got, err := store.Get(ctx, "rr-1")
	require.NoError(t, err)
	assert.Equal(t, StageRejected, got.Stage(), "the concurrent write wins")

	_, err = store.Transition(ctx, "rr-1", StagePending, func(r *Request) { r.Status = StatusApproved })
	require.ErrorIs(t, err, ErrStageConflict)
}

func TestMongoStore_TransitionAppliesChange(t *testing.T) {
	t.Parallel()

	store := newTestMongoStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, Request{ID: "rr-2", Number: "RR-000002", Status: StatusPending}))

	updated, err := store.Transition(ctx, "rr-2", StagePending, func(r *Request) { r.Status = StatusApproved })
	require.NoError(t, err)
	assert.Equal(t, StageApproved, updated.Stage())

	pickup := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	updated, err = store.Transition(ctx, "rr-2", StageApproved, func(r *Request) {
		r.PickupScheduled = true
		r.PickupDate = &pickup
	})
	require.NoError(t, err)
	assert.Equal(t, StagePickupScheduled, updated.Stage())
}
