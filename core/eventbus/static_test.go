package eventbus_test

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/eventbus"
)

// Static subscribers run on the zero value, so each test owns its type and counters.

var (
	genericHookCalls atomic.Int64
	genericHookAny   atomic.Int64
)

type genericHooks struct{}

func (genericHooks) OnBase(e *BaseEvent)     { genericHookCalls.Add(1) }
func (genericHooks) OnAny(e event.Event)     { genericHookAny.Add(1) }
func (*genericHooks) OnPointer(e *BaseEvent) { genericHookCalls.Add(100) }

var reflectHookCalls atomic.Int64

type reflectHooks struct{}

func (reflectHooks) OnBase(ctx context.Context, e *BaseEvent) error {
	reflectHookCalls.Add(1)
	return nil
}

var (
	staticRecoverCalls atomic.Int64
	staticRecoverOrder = &callLog{}
)

type staticRecover struct{}

func (staticRecover) RecoverAll(err error) {
	staticRecoverCalls.Add(1)
	staticRecoverOrder.add("static")
}

func (staticRecover) EventTags() eventbus.Tags {
	return eventbus.Tags{"RecoverAll": {Priority: 1}}
}

var idempotentHookCalls atomic.Int64

type idempotentHooks struct{}

func (idempotentHooks) OnBase(e *BaseEvent) { idempotentHookCalls.Add(1) }

func TestSubscribeStatic_Generic(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	require.NoError(t, eventbus.SubscribeStatic[genericHooks](bus))

	require.NoError(t, bus.Post(context.Background(), &BaseEvent{}))
	assert.Equal(t, int64(1), genericHookCalls.Load(), "pointer-receiver methods are not static handlers")
	assert.Equal(t, int64(1), genericHookAny.Load())

	eventbus.UnsubscribeStatic[genericHooks](bus)
	require.NoError(t, bus.Post(context.Background(), &BaseEvent{}))
	assert.Equal(t, int64(1), genericHookCalls.Load())
	assert.Zero(t, bus.Stats().Subscribers)
}

func TestSubscribeStatic_ReflectType(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	typ := reflect.TypeFor[reflectHooks]()
	require.NoError(t, bus.SubscribeStatic(typ))

	require.NoError(t, bus.Post(context.Background(), &BaseEvent{}))
	assert.Equal(t, int64(1), reflectHookCalls.Load())

	bus.UnsubscribeStatic(typ)
	bus.UnsubscribeStatic(typ)
	bus.UnsubscribeStatic(nil)
	require.NoError(t, bus.Post(context.Background(), &BaseEvent{}))
	assert.Equal(t, int64(1), reflectHookCalls.Load())
}

func TestSubscribeStatic_Idempotent(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	require.NoError(t, eventbus.SubscribeStatic[idempotentHooks](bus))
	require.NoError(t, bus.SubscribeStatic(reflect.TypeFor[idempotentHooks]()))

	require.NoError(t, bus.Post(context.Background(), &BaseEvent{}))
	assert.Equal(t, int64(1), idempotentHookCalls.Load())
	assert.Equal(t, 1, bus.Stats().Subscribers)
}

func TestSubscribeStatic_FailureHandlers(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	log := &callLog{}
	require.NoError(t, eventbus.Subscribe(bus, &throwingSub{log: log}))
	require.NoError(t, eventbus.Subscribe(bus, &recoverAll{log: staticRecoverOrder}))
	require.NoError(t, eventbus.SubscribeStatic[staticRecover](bus))

	require.NoError(t, bus.Post(context.Background(), &BaseEvent{}))
	assert.Equal(t, int64(1), staticRecoverCalls.Load())
	assert.Equal(t, []string{"static", "recovered"}, staticRecoverOrder.list(), "tags apply to static handlers")
	assert.Zero(t, bus.Stats().Unhandled)
}

func TestSubscribeStatic_InvalidType(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	assert.ErrorIs(t, bus.SubscribeStatic(nil), eventbus.ErrInvalidStaticType)
	assert.ErrorIs(t, bus.SubscribeStatic(reflect.TypeFor[*reflectHooks]()), eventbus.ErrInvalidStaticType)
	assert.ErrorIs(t, eventbus.SubscribeStatic[event.Event](bus), eventbus.ErrInvalidStaticType)
	assert.Zero(t, bus.Stats().Subscribers)
}
