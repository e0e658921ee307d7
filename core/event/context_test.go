package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithEventID_EventID(t *testing.T) {
	t.Parallel()

	t.Run("store and retrieve event ID", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		expectedID := "evt_123456"

		ctx = event.WithEventID(ctx, expectedID)
		actualID := event.EventID(ctx)

		assert.Equal(t, expectedID, actualID)
	})

	t.Run("retrieve from context without event ID", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		actualID := event.EventID(ctx)

		assert.Equal(t, "", actualID, "should return empty string when event ID not present")
	})

	t.Run("overwrite existing event ID", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ctx = event.WithEventID(ctx, "evt_first")
		ctx = event.WithEventID(ctx, "evt_second")

		actualID := event.EventID(ctx)
		assert.Equal(t, "evt_second", actualID)
	})
}

func TestWithEventName_EventName(t *testing.T) {
	t.Parallel()

	t.Run("store and retrieve event name", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		expectedName := "UserCreated"

		ctx = event.WithEventName(ctx, expectedName)
		actualName := event.EventName(ctx)

		assert.Equal(t, expectedName, actualName)
	})

	t.Run("retrieve from context without event name", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		actualName := event.EventName(ctx)

		assert.Equal(t, "", actualName, "should return empty string when event name not present")
	})

	t.Run("overwrite existing event name", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		ctx = event.WithEventName(ctx, "FirstEvent")
		ctx = event.WithEventName(ctx, "SecondEvent")

		actualName := event.EventName(ctx)
		assert.Equal(t, "SecondEvent", actualName)
	})
}

func TestWithEventTime_EventTime(t *testing.T) {
	t.Parallel()

	t.Run("store and retrieve event time", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		expectedTime := time.Date(2025, 10, 2, 12, 30, 0, 0, time.UTC)

		ctx = event.WithEventTime(ctx, expectedTime)
		actualTime := event.EventTime(ctx)

		assert.Equal(t, expectedTime, actualTime)
	})

	t.Run("retrieve from context without event time", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		actualTime := event.EventTime(ctx)

		assert.True(t, actualTime.IsZero(), "should return zero time when event time not present")
	})

	t.Run("overwrite existing event time", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		firstTime := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
		secondTime := time.Date(2025, 10, 2, 13, 0, 0, 0, time.UTC)

		ctx = event.WithEventTime(ctx, firstTime)
		ctx = event.WithEventTime(ctx, secondTime)

		actualTime := event.EventTime(ctx)
		assert.Equal(t, secondTime, actualTime)
	})
}


func TestWithMeta(t *testing.T) {
	t.Parallel()

	t.Run("attaches every field", func(t *testing.T) {
		t.Parallel()

		meta := event.Meta{
			ID:        "evt_meta",
			Name:      "OrderPlaced",
			CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}

		ctx := event.WithMeta(context.Background(), meta)

		assert.Equal(t, meta.ID, event.EventID(ctx))
		assert.Equal(t, meta.Name, event.EventName(ctx))
		assert.Equal(t, meta.CreatedAt, event.EventTime(ctx))
	})

	t.Run("empty fields keep existing values", func(t *testing.T) {
		t.Parallel()

		ctx := event.WithEventID(context.Background(), "old_id")
		ctx = event.WithEventName(ctx, "OldEvent")

		ctx = event.WithMeta(ctx, event.Meta{Name: "NewEvent"})

		assert.Equal(t, "old_id", event.EventID(ctx))
		assert.Equal(t, "NewEvent", event.EventName(ctx))
		assert.True(t, event.EventTime(ctx).IsZero())
	})
}

func TestWithDispatchID_DispatchID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, event.DispatchID(ctx))

	ctx = event.WithDispatchID(ctx, "dsp_1")
	require.Equal(t, "dsp_1", event.DispatchID(ctx))

	ctx = event.WithDispatchID(ctx, "dsp_2")
	assert.Equal(t, "dsp_2", event.DispatchID(ctx))
}
