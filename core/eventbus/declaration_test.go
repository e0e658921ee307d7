package eventbus

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventbus/core/event"
)

type orderPlaced struct {
	event.Base
	ID string
}

type orderShipped struct {
	orderPlaced
	Carrier string
}

type OrderPlaced struct {
	event.Base
	ID string
}

type ExpressOrder struct {
	OrderPlaced
	hidden orderPlaced
}

type Envelope struct {
	*OrderPlaced
	Note string
}

type Rush struct {
	ExpressOrder
	Reason string
}

type errorEvent struct {
	event.Base
}

func (errorEvent) Error() string { return "both" }

type declaredError struct{}

func (*declaredError) Error() string { return "declared" }

type fixture struct{ n int }

func (f *fixture) OnPlaced(e *OrderPlaced)                               {}
func (f *fixture) OnPlacedCtx(ctx context.Context, e *OrderPlaced) error { return nil }
func (f *fixture) OnAny(e event.Event)                                   {}
func (f *fixture) OnRoot(e *event.Base)                                  {}
func (f *fixture) OnString(s string)                                     {}
func (f *fixture) OnTwo(a, b *OrderPlaced)                               {}
func (f *fixture) OnResult(e *OrderPlaced) int                           { return 0 }
func (f *fixture) OnResults(e *OrderPlaced) (int, error)                 { return 0, nil }
func (f *fixture) OnVariadic(e ...*OrderPlaced)                          {}
func (f *fixture) OnCtxOnly(ctx context.Context)                         {}
func (f *fixture) RecoverBoth(e *OrderPlaced, err error)                 {}
func (f *fixture) RecoverTyped(e *OrderPlaced, err *declaredError) error { return nil }
func (f *fixture) RecoverEvent(ctx context.Context, e *OrderPlaced)      {}
func (f *fixture) RecoverError(err error)                                {}
func (f *fixture) RecoverAmbiguous(e errorEvent)                         {}
func (f *fixture) RecoverSwapped(err error, e *OrderPlaced)              {}
func (f *fixture) RecoverNone()                                          {}
func (f *fixture) RecoverThree(e *OrderPlaced, a error, b error)         {}
func (f fixture) OnByValue(e *OrderPlaced)                               {}
func (f *fixture) Helper(e *OrderPlaced)                                 {}

type (
	promoted   struct{}
	viaPointer struct{ *promoted }
	viaValue   struct{ promoted }
	deeper     struct{ viaPointer }
	shadowing  struct {
		*promoted
		inner viaValue
	}
	cyclic     struct {
		*cyclic
		*promoted
	}
)

func (*promoted) OnPlaced(e *OrderPlaced) {}
func (promoted) OnAny(e event.Event)      {}

var defaultPrefixes = prefixes{handler: "On", failure: "Recover"}

func classifyFixture(t *testing.T, name string, tags Tags) (declaration, string) {
	t.Helper()
	recv := reflect.TypeFor[*fixture]()
	m, ok := recv.MethodByName(name)
	require.True(t, ok, "fixture has no method %s", name)
	return classify(recv, m, false, defaultPrefixes, tags)
}

func TestClassify_EventHandlers(t *testing.T) {
	t.Parallel()

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		d, reason := classifyFixture(t, "OnPlaced", nil)
		require.Empty(t, reason)
		assert.Equal(t, kindEvent, d.kind)
		assert.Equal(t, reflect.TypeFor[*OrderPlaced](), d.eventType)
		assert.False(t, d.withContext)
		assert.False(t, d.returnsErr)
	})

	t.Run("context and error", func(t *testing.T) {
		t.Parallel()
		d, _ := classifyFixture(t, "OnPlacedCtx", Tags{"OnPlacedCtx": {Priority: 3, RunIfCanceled: true}})
		require.NotNil(t, d.eventType)
		assert.True(t, d.withContext)
		assert.True(t, d.returnsErr)
		assert.Equal(t, Tag{Priority: 3, RunIfCanceled: true}, d.tag)
	})

	t.Run("interface", func(t *testing.T) {
		t.Parallel()
		d, _ := classifyFixture(t, "OnAny", nil)
		assert.Equal(t, eventIface, d.eventType)
	})

	rejected := []string{
		"OnRoot", "OnString", "OnTwo", "OnResult", "OnResults",
		"OnVariadic", "OnCtxOnly", "OnByValue",
	}
	for _, name := range rejected {
		t.Run("rejects "+name, func(t *testing.T) {
			t.Parallel()
			d, reason := classifyFixture(t, name, nil)
			assert.Nil(t, d.eventType)
			assert.NotEmpty(t, reason)
		})
	}

	t.Run("ignores unprefixed", func(t *testing.T) {
		t.Parallel()
		d, reason := classifyFixture(t, "Helper", nil)
		assert.Nil(t, d.eventType)
		assert.Empty(t, reason)
	})
}

func TestClassify_FailureHandlers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		rank        int
		eventType   reflect.Type
		failureType reflect.Type
		withContext bool
	}{
		{name: "RecoverBoth", rank: rankEventFailure, eventType: reflect.TypeFor[*OrderPlaced]()},
		{name: "RecoverTyped", rank: rankEventFailure, eventType: reflect.TypeFor[*OrderPlaced](), failureType: reflect.TypeFor[*declaredError]()},
		{name: "RecoverEvent", rank: rankEventOnly, eventType: reflect.TypeFor[*OrderPlaced](), withContext: true},
		{name: "RecoverError", rank: rankFailureOnly, eventType: anyEventType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, reason := classifyFixture(t, tt.name, Tags{tt.name: {RunIfCanceled: true}})
			require.Empty(t, reason)
			assert.Equal(t, kindFailure, d.kind)
			assert.Equal(t, tt.rank, d.rank)
			assert.Equal(t, tt.eventType, d.eventType)
			assert.Equal(t, tt.failureType, d.failureType)
			assert.Equal(t, tt.withContext, d.withContext)
			assert.False(t, d.tag.RunIfCanceled, "failure handlers never run for canceled events")
		})
	}

	for _, name := range []string{"RecoverAmbiguous", "RecoverSwapped", "RecoverNone", "RecoverThree"} {
		t.Run("rejects "+name, func(t *testing.T) {
			t.Parallel()
			d, reason := classifyFixture(t, name, nil)
			assert.Nil(t, d.eventType)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestClassify_Static(t *testing.T) {
	t.Parallel()

	recv := reflect.TypeFor[fixture]()
	m, ok := recv.MethodByName("OnByValue")
	require.True(t, ok)

	d, reason := classify(recv, m, true, defaultPrefixes, nil)
	require.Empty(t, reason)
	assert.Equal(t, reflect.TypeFor[*OrderPlaced](), d.eventType)
}

func TestPointerReceiver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    reflect.Type
		method string
		want   bool
	}{
		{name: "declared on pointer", typ: reflect.TypeFor[fixture](), method: "OnPlaced", want: true},
		{name: "declared on value", typ: reflect.TypeFor[fixture](), method: "OnByValue", want: false},
		{name: "promoted through embedded pointer", typ: reflect.TypeFor[viaPointer](), method: "OnPlaced", want: true},
		{name: "value method through embedded pointer", typ: reflect.TypeFor[viaPointer](), method: "OnAny", want: false},
		{name: "promoted through embedded value", typ: reflect.TypeFor[viaValue](), method: "OnPlaced", want: true},
		{name: "value method through embedded value", typ: reflect.TypeFor[viaValue](), method: "OnAny", want: false},
		{name: "two levels deep", typ: reflect.TypeFor[deeper](), method: "OnPlaced", want: true},
		{name: "named field is not embedded", typ: reflect.TypeFor[shadowing](), method: "OnPlaced", want: true},
		{name: "recursive embedding", typ: reflect.TypeFor[cyclic](), method: "OnPlaced", want: true},
		{name: "recursive embedding value method", typ: reflect.TypeFor[cyclic](), method: "OnAny", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pointerReceiver(tt.typ, tt.method))
		})
	}
}

func TestClassify_PromotedMethods(t *testing.T) {
	t.Parallel()

	instance := reflect.TypeFor[*viaPointer]()
	m, ok := instance.MethodByName("OnPlaced")
	require.True(t, ok)
	d, reason := classify(instance, m, false, defaultPrefixes, nil)
	require.Empty(t, reason)
	assert.Equal(t, reflect.TypeFor[*OrderPlaced](), d.eventType)

	static := reflect.TypeFor[viaPointer]()
	m, ok = static.MethodByName("OnPlaced")
	require.True(t, ok, "pointer methods of an embedded pointer are in the value method set")
	d, reason = classify(static, m, true, defaultPrefixes, nil)
	assert.Nil(t, d.eventType)
	assert.Equal(t, "pointer receiver on static subscriber", reason)

	m, ok = static.MethodByName("OnAny")
	require.True(t, ok)
	d, reason = classify(static, m, true, defaultPrefixes, nil)
	require.Empty(t, reason)
	assert.Equal(t, eventIface, d.eventType)
}

func TestPrefixes_KindOf(t *testing.T) {
	t.Parallel()

	overlapping := prefixes{handler: "On", failure: "OnError"}

	tests := []struct {
		p      prefixes
		name   string
		want   handlerKind
		wantOK bool
	}{
		{p: defaultPrefixes, name: "OnPlaced", want: kindEvent, wantOK: true},
		{p: defaultPrefixes, name: "RecoverPlaced", want: kindFailure, wantOK: true},
		{p: defaultPrefixes, name: "Placed"},
		{p: overlapping, name: "OnErrorPlaced", want: kindFailure, wantOK: true},
		{p: overlapping, name: "OnPlaced", want: kindEvent, wantOK: true},
	}

	for _, tt := range tests {
		got, ok := tt.p.kindOf(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		if ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}
}

func TestIsEventType(t *testing.T) {
	t.Parallel()

	assert.True(t, isEventType(reflect.TypeFor[OrderPlaced]()))
	assert.True(t, isEventType(reflect.TypeFor[*OrderPlaced]()))
	assert.True(t, isEventType(eventIface))
	assert.False(t, isEventType(rootType))
	assert.False(t, isEventType(rootPtrType))
	assert.False(t, isEventType(reflect.TypeFor[string]()))
	assert.False(t, isEventType(nil))
}
