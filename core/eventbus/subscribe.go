package eventbus

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"weak"

	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/logger"
)

// pending is a compiled handler waiting to be inserted.
type pending struct {
	*handler
	key  reflect.Type
	kind handlerKind
}

// Subscribe registers every event and failure handler declared with a pointer
// receiver on *T, including those promoted from embedded fields.
// A handler taking an event by value receives a copy when the event is posted by pointer.
// The bus holds s weakly: once s is otherwise unreachable its
// handlers stop running and are pruned, no Unsubscribe needed.
// Subscribing the same pointer twice is a no-op.
//
// Example:
//
//	audit := &Audit{}
//	if err := eventbus.Subscribe(bus, audit); err != nil {
//	    return err
//	}
func Subscribe[T any](b *Bus, s *T) error {
	if s == nil {
		return ErrNilSubscriber
	}
	if reflect.TypeFor[T]().Size() == 0 {
		return ErrZeroSizeSubscriber
	}

	o := weakOwner[T]{ptr: weak.Make(s)}
	id := o.id()

	b.mu.RLock()
	_, exists := b.instances[id]
	b.mu.RUnlock()
	if exists {
		return nil
	}

	var tags Tags
	if t, ok := any(s).(Tagger); ok {
		tags = t.EventTags()
	}
	entries := b.discover(reflect.TypeFor[*T](), o, false, tags, compileMethod[*T])

	b.mu.Lock()
	if _, exists := b.instances[id]; exists {
		b.mu.Unlock()
		return nil
	}
	rec := b.install(entries)
	b.instances[id] = rec

	// The cleanup holds the bus weakly so a forgotten bus is not kept alive by its subscribers.
	wb := weak.Make(b)
	c := runtime.AddCleanup(s, func(id any) {
		if bus := wb.Value(); bus != nil {
			bus.evict(id)
		}
	}, id)
	rec.cleanup = &c
	b.mu.Unlock()

	b.logger.Debug("subscriber registered",
		logger.Component("eventbus"),
		logger.Subscriber(reflect.TypeFor[*T]().String()),
		logger.Count("handlers", len(entries)))
	return nil
}

// Unsubscribe removes every handler registered for s.
// Unsubscribing a pointer that is not subscribed is a no-op.
func Unsubscribe[T any](b *Bus, s *T) {
	if s == nil {
		return
	}
	id := any(weak.Make(s))

	b.mu.Lock()
	rec, ok := b.instances[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.instances, id)
	removed := b.uninstall(id, rec)
	b.mu.Unlock()

	if rec.cleanup != nil {
		rec.cleanup.Stop()
	}
	b.logger.Debug("subscriber unregistered",
		logger.Component("eventbus"),
		logger.Subscriber(reflect.TypeFor[*T]().String()),
		logger.Count("handlers_removed", removed))
}

// SubscribeStatic registers the value-receiver handlers of T, called on T's zero value.
// Static subscribers stay registered until UnsubscribeStatic.
//
// Example:
//
//	type Metrics struct{}
//
//	func (Metrics) OnAnyEvent(evt event.Event) { counter.Inc() }
//
//	eventbus.SubscribeStatic[Metrics](bus)
func SubscribeStatic[T any](b *Bus) error {
	return b.subscribeStatic(reflect.TypeFor[T](), compileMethod[T])
}

// UnsubscribeStatic removes the handlers registered by SubscribeStatic[T].
func UnsubscribeStatic[T any](b *Bus) {
	b.UnsubscribeStatic(reflect.TypeFor[T]())
}

// SubscribeStatic registers the value-receiver handlers of t.
// Use it when the type is only known at run time; handlers are called through reflection.
func (b *Bus) SubscribeStatic(t reflect.Type) error {
	return b.subscribeStatic(t, nil)
}

// UnsubscribeStatic removes the handlers registered for t.
func (b *Bus) UnsubscribeStatic(t reflect.Type) {
	if t == nil {
		return
	}

	b.mu.Lock()
	rec, ok := b.statics[t]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.statics, t)
	removed := b.uninstall(t, rec)
	b.mu.Unlock()

	b.logger.Debug("static subscriber unregistered",
		logger.Component("eventbus"),
		logger.Subscriber(t.String()),
		logger.Count("handlers_removed", removed))
}

func (b *Bus) subscribeStatic(t reflect.Type, compile compileFunc) error {
	if t == nil || t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return ErrInvalidStaticType
	}

	b.mu.RLock()
	_, exists := b.statics[t]
	b.mu.RUnlock()
	if exists {
		return nil
	}

	o := newStaticOwner(t)
	var tags Tags
	if tg, ok := o.zero.(Tagger); ok {
		tags = tg.EventTags()
	}
	entries := b.discover(t, o, true, tags, compile)

	b.mu.Lock()
	if _, exists := b.statics[t]; exists {
		b.mu.Unlock()
		return nil
	}
	b.statics[t] = b.install(entries)
	b.mu.Unlock()

	b.logger.Debug("static subscriber registered",
		logger.Component("eventbus"),
		logger.Subscriber(t.String()),
		logger.Count("handlers", len(entries)))
	return nil
}

// discover classifies the methods of recv and compiles the accepted ones.
// compile may be nil, in which case every handler is called through reflection.
func (b *Bus) discover(recv reflect.Type, o owner, static bool, tags Tags, compile compileFunc) []pending {
	var entries []pending
	debug := logger.Enabled(context.Background(), b.logger, slog.LevelDebug)

	for i := range recv.NumMethod() {
		m := recv.Method(i)
		name := recv.String() + "." + m.Name

		d, reason := classify(recv, m, static, b.prefixes, tags)
		if d.eventType == nil {
			if reason != "" && debug {
				b.logger.Debug("handler method skipped",
					logger.Component("eventbus"),
					logger.Handler(name),
					logger.Key("reason", reason))
			}
			continue
		}

		var inv invoker
		if compile != nil {
			inv = compile(m.Func.Interface(), d)
			if inv == nil && debug && compilable(d) {
				b.logger.Debug("handler compiled through reflection",
					logger.Component("eventbus"),
					logger.Handler(name))
			}
		}
		if inv == nil {
			inv = newReflectInvoker(d)
		}

		if debug {
			b.logger.Debug("handler discovered",
				logger.Component("eventbus"),
				logger.Handler(name),
				logger.EventType(event.TypeName(d.eventType)),
				logger.Priority(d.tag.Priority))
		}

		entries = append(entries, pending{
			handler: &handler{
				owner:         o,
				name:          name,
				priority:      d.tag.Priority,
				runIfCanceled: d.tag.RunIfCanceled,
				rank:          d.rank,
				failureType:   d.failureType,
				invoker:       inv,
			},
			key:  d.eventType,
			kind: d.kind,
		})
	}

	return entries
}
