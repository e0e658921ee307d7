package eventbus

import (
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/eventbus/core/logger"
)

// Bus routes posted events to the handler methods of its subscribers.
// A Bus is safe for concurrent use and starts no goroutines of its own.
// Independent buses share no state.
type Bus struct {
	mu        sync.RWMutex
	handlers  *registry
	failures  *registry
	instances map[any]*ownership
	statics   map[reflect.Type]*ownership

	prefixes prefixes
	mode     CancelMode
	sink     FailureSink
	logger   *slog.Logger

	posted         atomic.Uint64
	invoked        atomic.Uint64
	failed         atomic.Uint64
	unhandled      atomic.Uint64
	shortCircuited atomic.Uint64
	pruned         atomic.Uint64
}

// ownership records the table keys a subscriber holds entries under.
type ownership struct {
	handlerKeys map[reflect.Type]struct{}
	failureKeys map[reflect.Type]struct{}
	cleanup     *runtime.Cleanup
}

// Stats provides observability counters for monitoring and debugging.
type Stats struct {
	// Posted counts Post calls that passed validation.
	Posted uint64
	// Invoked counts event handler invocations.
	Invoked uint64
	// Failed counts event handler invocations that returned an error or panicked.
	Failed uint64
	// Unhandled counts failures no failure handler accepted.
	Unhandled uint64
	// ShortCircuited counts dispatches stopped by cancellation in Enforce mode.
	ShortCircuited uint64
	// Pruned counts subscribers removed because they were garbage collected.
	Pruned uint64

	Subscribers     int
	Handlers        int
	FailureHandlers int
}

// New creates a bus with the given options.
//
// Example:
//
//	bus := eventbus.New(
//	    eventbus.WithLogger(logger),
//	    eventbus.WithDefaultCancelMode(eventbus.Enforce),
//	)
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers:  newRegistry(compareEventHandlers, false),
		failures:  newRegistry(compareFailureHandlers, true),
		instances: make(map[any]*ownership),
		statics:   make(map[reflect.Type]*ownership),
		prefixes:  prefixes{handler: "On", failure: "Recover"},
		mode:      Respect,
		logger:    logger.Discard(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	subscribers := len(b.instances) + len(b.statics)
	handlers := b.handlers.count()
	failures := b.failures.count()
	b.mu.RUnlock()

	return Stats{
		Posted:          b.posted.Load(),
		Invoked:         b.invoked.Load(),
		Failed:          b.failed.Load(),
		Unhandled:       b.unhandled.Load(),
		ShortCircuited:  b.shortCircuited.Load(),
		Pruned:          b.pruned.Load(),
		Subscribers:     subscribers,
		Handlers:        handlers,
		FailureHandlers: failures,
	}
}

// resolve returns the merged handler list of reg for concrete type t,
// computing it under the write lock on a cache miss.
func (b *Bus) resolve(reg *registry, t reflect.Type) []resolved {
	b.mu.RLock()
	list, ok := reg.cached(t)
	b.mu.RUnlock()
	if ok {
		return list
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return reg.resolve(t)
}

// install inserts compiled handlers for one subscriber and returns its ownership record.
// Caller must hold the write lock.
func (b *Bus) install(entries []pending) *ownership {
	rec := &ownership{
		handlerKeys: make(map[reflect.Type]struct{}),
		failureKeys: make(map[reflect.Type]struct{}),
	}

	for _, e := range entries {
		if e.kind == kindEvent {
			b.handlers.insert(e.key, e.handler)
			rec.handlerKeys[e.key] = struct{}{}
		} else {
			b.failures.insert(e.key, e.handler)
			rec.failureKeys[e.key] = struct{}{}
		}
	}

	b.handlers.invalidate()
	b.failures.invalidate()
	return rec
}

// uninstall removes every entry of id listed in rec. Caller must hold the write lock.
func (b *Bus) uninstall(id any, rec *ownership) int {
	removed := 0
	for key := range rec.handlerKeys {
		removed += b.handlers.remove(key, id)
	}
	for key := range rec.failureKeys {
		removed += b.failures.remove(key, id)
	}

	b.handlers.invalidate()
	b.failures.invalidate()
	return removed
}

// evict drops an instance subscriber whose pointer is no longer reachable.
// It runs from the runtime cleanup queue and from dispatch when a dead owner is met.
func (b *Bus) evict(id any) {
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
	b.pruned.Add(1)
	b.logger.Debug("collected subscriber pruned",
		logger.Component("eventbus"),
		logger.Count("handlers_removed", removed))
}
