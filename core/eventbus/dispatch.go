package eventbus

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/logger"
	"github.com/dmitrymomot/eventbus/pkg/async"
)

type metaCarrier interface {
	EventMeta() event.Meta
}

// Post dispatches ev to every applicable handler using the bus default cancel mode.
// See PostWithMode.
func (b *Bus) Post(ctx context.Context, ev event.Event) error {
	return b.PostWithMode(ctx, ev, b.mode)
}

// PostAsync dispatches ev on a new goroutine with the bus default cancel mode.
// Handlers still run one after another; only the caller stops waiting.
// The Future yields what Post would have returned.
//
// Example:
//
//	f := bus.PostAsync(ctx, &OrderPlaced{OrderID: id})
//	// ...
//	if err := f.Await(); err != nil {
//	    return err
//	}
func (b *Bus) PostAsync(ctx context.Context, ev event.Event) *async.Future {
	mode := b.mode
	return async.Go(ctx, func(ctx context.Context) error {
		return b.PostWithMode(ctx, ev, mode)
	})
}

// PostWithMode dispatches ev on the calling goroutine.
//
// Handlers declared for ev's type, its embedded event types and the registered
// interfaces it implements run in descending priority; ties keep the more specific
// type first, then registration order. A handler failure is routed to failure
// handlers and the dispatch continues. PostWithMode returns a non-nil error only when:
//   - ev is nil (ErrNilEvent) or ctx is already done (ctx.Err());
//   - a fatal failure found no failure handler (*UnhandledError);
//   - a failure handler failed (*FailureHandlerError).
//
// In the last two cases the remaining handlers do not run.
func (b *Bus) PostWithMode(ctx context.Context, ev event.Event, mode CancelMode) error {
	if ev == nil {
		return ErrNilEvent
	}
	if v := reflect.ValueOf(ev); v.Kind() == reflect.Pointer && v.IsNil() {
		return ErrNilEvent
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.posted.Add(1)

	cancelable, _ := ev.(event.Cancelable)
	if mode == Enforce && cancelable != nil && cancelable.Canceled() {
		b.shortCircuited.Add(1)
		return nil
	}

	t := reflect.TypeOf(ev)
	handlers := b.resolve(b.handlers, t)
	if len(handlers) == 0 {
		return nil
	}

	if m, ok := ev.(metaCarrier); ok {
		ctx = event.WithMeta(ctx, m.EventMeta())
	}
	if event.EventName(ctx) == "" {
		ctx = event.WithEventName(ctx, event.TypeName(t))
	}

	d := &dispatch{bus: b, ev: ev, typ: t}
	if logger.Enabled(ctx, b.logger, slog.LevelDebug) {
		start := time.Now()
		defer func() {
			b.logger.DebugContext(ctx, "event dispatched",
				logger.Component("eventbus"),
				logger.EventType(event.TypeName(t)),
				logger.Group("dispatch",
					logger.Count("handlers", len(handlers)),
					logger.Duration(time.Since(start))))
		}()
	}

	for _, h := range handlers {
		if cancelable != nil && cancelable.Canceled() {
			switch mode {
			case Ignore:
			case Enforce:
				b.shortCircuited.Add(1)
				return nil
			default:
				if !h.runIfCanceled {
					continue
				}
			}
		}

		recv, alive := h.owner.receiver()
		if !alive {
			b.evict(h.owner.id())
			continue
		}

		arg, ok := h.path.project(ev)
		if !ok {
			continue
		}

		b.invoked.Add(1)
		if err := safeInvoke(h.invoker, ctx, recv, arg, nil); err != nil {
			b.failed.Add(1)
			if err := d.fail(ctx, h.handler, err); err != nil {
				return err
			}
		}
	}

	return nil
}
