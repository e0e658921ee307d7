package eventbus

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/eventbus/core/event"
	"github.com/dmitrymomot/eventbus/core/logger"
)

// FailureSink receives failures that no failure handler accepted.
type FailureSink interface {
	RecordFailure(ctx context.Context, rec FailureRecord) error
}

// FailureRecord describes one unhandled handler failure.
// It carries no event payload, only identifiers.
type FailureRecord struct {
	ID         string    `json:"id"`
	DispatchID string    `json:"dispatch_id"`
	EventType  string    `json:"event_type"`
	EventID    string    `json:"event_id,omitempty"`
	Handler    string    `json:"handler"`
	Message    string    `json:"message"`
	Fatal      bool      `json:"fatal"`
	OccurredAt time.Time `json:"occurred_at"`
}

// dispatch is the per-Post state the failure router needs.
type dispatch struct {
	bus *Bus
	ev  event.Event
	typ reflect.Type
	id  string
}

// dispatchID returns the ID shared by every failure of this dispatch, created on first use.
func (d *dispatch) dispatchID() string {
	if d.id == "" {
		d.id = uuid.New().String()
	}
	return d.id
}

// fail routes a handler failure to the failure handlers applicable to the event.
// It returns an error only when the failure must abort the dispatch.
func (d *dispatch) fail(ctx context.Context, source *handler, failure error) error {
	b := d.bus
	ctx = event.WithDispatchID(ctx, d.dispatchID())

	invoked := 0
	for _, f := range b.resolve(b.failures, d.typ) {
		var failureArg any = failure
		if f.failureType != nil {
			v, ok := matchFailure(failure, f.failureType)
			if !ok {
				continue
			}
			failureArg = v
		}

		recv, alive := f.owner.receiver()
		if !alive {
			b.evict(f.owner.id())
			continue
		}

		var evArg any
		if f.rank != rankFailureOnly {
			v, ok := f.path.project(d.ev)
			if !ok {
				continue
			}
			evArg = v
		}

		invoked++
		if err := safeInvoke(f.invoker, ctx, recv, evArg, failureArg); err != nil {
			return &FailureHandlerError{
				EventType: event.TypeName(d.typ),
				Handler:   f.name,
				Failure:   failure,
				Err:       err,
			}
		}
	}

	if invoked > 0 {
		return nil
	}

	fatal := IsFatal(failure)
	b.unhandled.Add(1)
	d.record(ctx, source, failure, fatal)

	if fatal {
		var pe *PanicError
		var panicValue any
		if errors.As(failure, &pe) {
			panicValue = pe.Value
		}
		b.logger.ErrorContext(ctx, "unhandled fatal handler failure",
			logger.Component("eventbus"),
			logger.EventType(event.TypeName(d.typ)),
			logger.EventID(event.EventID(ctx)),
			logger.DispatchID(d.dispatchID()),
			logger.Handler(source.name),
			logger.Fatal(true),
			logger.Panic(panicValue),
			logger.Error(failure))
		return &UnhandledError{
			EventType: event.TypeName(d.typ),
			Handler:   source.name,
			Err:       failure,
		}
	}

	b.logger.WarnContext(ctx, "unhandled handler failure",
		logger.Component("eventbus"),
		logger.EventType(event.TypeName(d.typ)),
		logger.EventID(event.EventID(ctx)),
		logger.DispatchID(d.dispatchID()),
		logger.Handler(source.name),
		logger.Fatal(false),
		logger.Error(failure))
	return nil
}

func (d *dispatch) record(ctx context.Context, source *handler, failure error, fatal bool) {
	b := d.bus
	if b.sink == nil {
		return
	}

	rec := FailureRecord{
		ID:         uuid.New().String(),
		DispatchID: d.dispatchID(),
		EventType:  event.TypeName(d.typ),
		EventID:    event.EventID(ctx),
		Handler:    source.name,
		Message:    failure.Error(),
		Fatal:      fatal,
		OccurredAt: time.Now(),
	}

	if err := b.sink.RecordFailure(ctx, rec); err != nil {
		b.logger.ErrorContext(ctx, "failed to record unhandled failure",
			logger.Component("eventbus"),
			logger.DispatchID(rec.DispatchID),
			logger.Handler(source.name),
			logger.Errors(err, failure))
	}
}

// matchFailure finds the first error in failure's chain assignable to t,
// with the same rules as errors.As.
func matchFailure(failure error, t reflect.Type) (any, bool) {
	target := reflect.New(t)
	if !errors.As(failure, target.Interface()) {
		return nil, false
	}
	return target.Elem().Interface(), true
}
