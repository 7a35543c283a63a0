package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omegavideos/internal/model"
	"omegavideos/internal/queue"
)

type memoryWriter struct {
	mu      sync.Mutex
	written []model.NotificationIntent
	failFor map[int64]bool
}

func (w *memoryWriter) Create(ctx context.Context, in model.NotificationIntent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failFor[in.RecipientID] {
		return errors.New("insert failed")
	}
	w.written = append(w.written, in)
	return nil
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, stream string, event queue.NotificationEvent) (string, error)
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
	return m.PublishFunc(ctx, stream, event)
}

func intent(recipient, actor int64) model.NotificationIntent {
	return model.NotificationIntent{RecipientID: recipient, ActorID: actor, Type: model.NotificationTypeNewVideo}
}

func TestDirect_SuppressesSelf(t *testing.T) {
	w := &memoryWriter{}
	res := NewDirect(w).Dispatch(context.Background(), []model.NotificationIntent{intent(1, 1), intent(2, 1)})

	assert.Equal(t, Result{Delivered: 1, Suppressed: 1}, res)
	require.Len(t, w.written, 1)
	assert.Equal(t, int64(2), w.written[0].RecipientID)
}

func TestDirect_FailureDoesNotStopLoop(t *testing.T) {
	// ARRANGE
	w := &memoryWriter{failFor: map[int64]bool{3: true}}
	intents := []model.NotificationIntent{intent(2, 1), intent(3, 1), intent(4, 1)}

	// ACT
	res := NewDirect(w).Dispatch(context.Background(), intents)

	// ASSERT
	assert.Equal(t, Result{Delivered: 2, Failed: 1}, res)
	assert.Equal(t, []int64{2, 4}, []int64{w.written[0].RecipientID, w.written[1].RecipientID})
}

func TestDirect_Empty(t *testing.T) {
	assert.Equal(t, Result{}, NewDirect(&memoryWriter{}).Dispatch(context.Background(), nil))
}

func TestStream_PublishesNonSelfIntents(t *testing.T) {
	// ARRANGE
	var got queue.NotificationEvent
	var gotStream string
	pub := &mockPublisher{PublishFunc: func(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
		gotStream, got = stream, event
		return "1-0", nil
	}}
	w := &memoryWriter{}
	s := NewStream(pub, NewDirect(w))

	// ACT
	res := s.Dispatch(context.Background(), []model.NotificationIntent{intent(1, 1), intent(2, 1), intent(3, 1)})

	// ASSERT
	assert.Equal(t, Result{Queued: 2, Suppressed: 1}, res)
	assert.Equal(t, queue.StreamNotifications, gotStream)
	assert.Equal(t, queue.EventNotificationsRequested, got.Type)
	assert.Len(t, got.Intents, 2)
	assert.Empty(t, w.written)
}

func TestStream_FallsBackToDirect(t *testing.T) {
	pub := &mockPublisher{PublishFunc: func(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
		return "", errors.New("redis down")
	}}
	w := &memoryWriter{}
	s := NewStream(pub, NewDirect(w))

	res := s.Dispatch(context.Background(), []model.NotificationIntent{intent(2, 1), intent(3, 1)})

	assert.Equal(t, Result{Delivered: 2}, res)
	assert.Len(t, w.written, 2)
}

func TestStream_AllSuppressedSkipsPublish(t *testing.T) {
	pub := &mockPublisher{PublishFunc: func(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
		t.Fatal("publish must not be called")
		return "", nil
	}}
	res := NewStream(pub, NewDirect(&memoryWriter{})).Dispatch(context.Background(), []model.NotificationIntent{intent(5, 5)})
	assert.Equal(t, Result{Suppressed: 1}, res)
}
