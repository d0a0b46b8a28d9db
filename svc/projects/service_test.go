package projects_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/validator"
	"github.com/dmitrymomot/storefront/svc/notify"
	"github.com/dmitrymomot/storefront/svc/projects"
)

type recordingNotifier struct {
	payloads []notify.Payload
}

func (r *recordingNotifier) DispatchAsync(_ context.Context, p notify.Payload) {
	r.payloads = append(r.payloads, p)
}

type failingStore struct{}

func (failingStore) Create(context.Context, projects.Request) error { return errors.New("db down") }

func (failingStore) List(context.Context, int, int) ([]projects.Request, error) { return nil, nil }

var submittedAt = time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)

func newService(store projects.Store, n *recordingNotifier) *projects.Service {
	return projects.NewService(store,
		projects.WithNotifier(n),
		projects.WithClock(func() time.Time { return submittedAt }),
		projects.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestSubmit_DispatchesProjectRequest(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	store := projects.NewMemoryStore()
	svc := newService(store, n)

	r, err := svc.Submit(context.Background(), projects.SubmitRequest{
		Name:    " Dan ",
		Email:   "Dan@Example.com",
		Service: "Custom furniture",
		Budget:  "5k",
		Message: "A walnut table",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dan", r.Name)
	assert.Equal(t, "dan@example.com", r.Email)

	require.Len(t, n.payloads, 1)
	p, ok := n.payloads[0].(notify.ProjectRequestPayload)
	require.True(t, ok)
	assert.Equal(t, r.ID, p.RequestID)
	assert.Equal(t, submittedAt, p.SubmittedAt)
	assert.Equal(t, notify.EventProjectRequest, p.Event())

	list, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	svc := newService(projects.NewMemoryStore(), n)

	_, err := svc.Submit(context.Background(), projects.SubmitRequest{Email: "not-an-email"})
	require.Error(t, err)

	verrs := validator.ExtractValidationErrors(err)
	for _, field := range []string{"name", "email", "service", "message"} {
		assert.True(t, verrs.Has(field), field)
	}
	assert.Empty(t, n.payloads)
}

func TestSubmit_StoreFailureSkipsDispatch(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	svc := newService(failingStore{}, n)

	_, err := svc.Submit(context.Background(), projects.SubmitRequest{
		Name: "Dan", Email: "dan@example.com", Service: "x", Message: "y",
	})
	assert.ErrorIs(t, err, projects.ErrFailedToSubmit)
	assert.Empty(t, n.payloads)
}
