package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/usecase/mocks"
)

func seedOutbox(t *testing.T, store *mocks.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		err := store.Outbox().Create(context.Background(), nil, &domain.OutboxEvent{
			ID:            id,
			AggregateID:   "acc-1",
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountChanged,
			Payload:       map[string]any{"balance": "1"},
		})
		require.NoError(t, err)
	}
}

func newTestWorker(t *testing.T, store *mocks.Store, pub *mocks.MockEventPublisher, batch int) (*Worker, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	w := NewWorker(Config{
		OutboxRepo: store.Outbox(),
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		Metrics:    m,
		BatchSize:  batch,
		Interval:   10 * time.Millisecond,
	})
	return w, m
}

func published(store *mocks.Store) map[string]bool {
	out := map[string]bool{}
	for _, e := range store.Events() {
		out[e.ID] = e.Published
	}
	return out
}

func TestWorker_ProcessBatchPublishesAndMarks(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewStore()
	seedOutbox(t, store, "evt-1")
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *domain.OutboxEvent) error {
			assert.Equal(t, "evt-1", e.ID)
			return nil
		})

	w, m := newTestWorker(t, store, pub, 10)
	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, published(store)["evt-1"])
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxPublished))
}

func TestWorker_ProcessBatchContinuesOnPublishError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2")
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e *domain.OutboxEvent) error {
			if e.ID == "evt-1" {
				return errors.New("fail")
			}
			return nil
		}).Times(2)

	w, m := newTestWorker(t, store, pub, 10)
	_, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)

	state := published(store)
	assert.False(t, state["evt-1"], "failed event stays pending")
	assert.True(t, state["evt-2"])
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxErrors))
}

func TestWorker_ProcessBatchLeavesEventWhenMarkFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewStore()
	seedOutbox(t, store, "evt-1")
	store.Fail("outbox.MarkPublished", errors.New("db down"))
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w, _ := newTestWorker(t, store, pub, 10)
	_, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, published(store)["evt-1"])
}

func TestWorker_ProcessBatchFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewStore()
	boom := errors.New("boom")
	store.Fail("outbox.GetUnpublished", boom)

	w, _ := newTestWorker(t, store, mocks.NewMockEventPublisher(ctrl), 10)
	_, err := w.ProcessBatch(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestWorker_DrainClearsBacklog(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewStore()
	seedOutbox(t, store, "evt-1", "evt-2", "evt-3", "evt-4", "evt-5")
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(5)

	w, _ := newTestWorker(t, store, pub, 2)
	w.drain(context.Background())

	for id, ok := range published(store) {
		assert.True(t, ok, id)
	}
}

func TestWorker_StartStopsOnContextCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewStore()
	seedOutbox(t, store, "evt-1")
	pub := mocks.NewMockEventPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	w, _ := newTestWorker(t, store, pub, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	assert.True(t, published(store)["evt-1"])
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), &domain.OutboxEvent{
		ID:        "evt-9",
		EventType: domain.EventTypeTransactionCreated,
		Payload:   map[string]any{"amount": "12.50"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"event_id":"evt-9"`)
	assert.Contains(t, buf.String(), `"payload":{"amount":"12.50"}`)
}
