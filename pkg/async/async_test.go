package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/async"
)

func TestAsync_Await(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAsync_RecoversPanic(t *testing.T) {
	t.Parallel()

	f := async.Async(context.Background(), struct{}{}, func(context.Context, struct{}) (string, error) {
		panic("kaboom")
	})
	v, err := f.Await()
	assert.Empty(t, v)
	assert.ErrorIs(t, err, async.ErrPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestAsync_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := async.Async(ctx, 1, func(context.Context, int) (int, error) {
		called = true
		return 1, nil
	}).Await()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSettle_DoesNotStopAtFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ctx := context.Background()
	futures := []*async.Future[int]{
		async.Async(ctx, 1, func(context.Context, int) (int, error) { return 0, boom }),
		async.Async(ctx, 2, func(_ context.Context, n int) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return n, nil
		}),
		async.Async(ctx, 3, func(_ context.Context, n int) (int, error) { return n, nil }),
	}

	results := async.Settle(futures...)
	require.Len(t, results, 3)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 2, results[1].Value)
	assert.Equal(t, 3, results[2].Value)
}
