package eventbus

import (
	"context"
	"reflect"
	"runtime/debug"

	"github.com/dmitrymomot/eventbus/core/event"
)

// invoker calls one handler method.
// recv is the live receiver, ev the projected event and failure the (possibly typed) failure.
// Arguments a shape does not declare are ignored.
type invoker interface {
	invoke(ctx context.Context, recv, ev, failure any) error
}

type invokerFunc func(ctx context.Context, recv, ev, failure any) error

func (f invokerFunc) invoke(ctx context.Context, recv, ev, failure any) error {
	return f(ctx, recv, ev, failure)
}

// compileFunc returns a direct invoker for fn, or nil when fn has no compiled shape.
type compileFunc func(fn any, d declaration) invoker

// safeInvoke runs inv and converts a panic into a *PanicError.
func safeInvoke(inv invoker, ctx context.Context, recv, ev, failure any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return inv.invoke(ctx, recv, ev, failure)
}

// compileMethod asserts a method expression with receiver R onto the signatures written
// against event.Event and error. Handlers declaring concrete types fall back to reflection.
func compileMethod[R any](fn any, d declaration) invoker {
	if d.kind == kindEvent || d.rank == rankEventOnly {
		return compileEventOnly[R](fn)
	}
	if d.rank == rankEventFailure {
		return compileEventFailure[R](fn)
	}
	return compileFailureOnly[R](fn)
}

// compilable reports whether d is written against event.Event and plain error only,
// the shapes compileMethod has direct invokers for.
func compilable(d declaration) bool {
	if d.eventType != eventIface && d.eventType != anyEventType {
		return false
	}
	return d.failureType == nil
}

func compileEventOnly[R any](fn any) invoker {
	switch f := fn.(type) {
	case func(R, event.Event):
		return invokerFunc(func(_ context.Context, recv, ev, _ any) error {
			f(recv.(R), ev.(event.Event))
			return nil
		})
	case func(R, event.Event) error:
		return invokerFunc(func(_ context.Context, recv, ev, _ any) error {
			return f(recv.(R), ev.(event.Event))
		})
	case func(R, context.Context, event.Event):
		return invokerFunc(func(ctx context.Context, recv, ev, _ any) error {
			f(recv.(R), ctx, ev.(event.Event))
			return nil
		})
	case func(R, context.Context, event.Event) error:
		return invokerFunc(func(ctx context.Context, recv, ev, _ any) error {
			return f(recv.(R), ctx, ev.(event.Event))
		})
	}
	return nil
}

func compileEventFailure[R any](fn any) invoker {
	switch f := fn.(type) {
	case func(R, event.Event, error):
		return invokerFunc(func(_ context.Context, recv, ev, failure any) error {
			f(recv.(R), ev.(event.Event), failure.(error))
			return nil
		})
	case func(R, event.Event, error) error:
		return invokerFunc(func(_ context.Context, recv, ev, failure any) error {
			return f(recv.(R), ev.(event.Event), failure.(error))
		})
	case func(R, context.Context, event.Event, error):
		return invokerFunc(func(ctx context.Context, recv, ev, failure any) error {
			f(recv.(R), ctx, ev.(event.Event), failure.(error))
			return nil
		})
	case func(R, context.Context, event.Event, error) error:
		return invokerFunc(func(ctx context.Context, recv, ev, failure any) error {
			return f(recv.(R), ctx, ev.(event.Event), failure.(error))
		})
	}
	return nil
}

func compileFailureOnly[R any](fn any) invoker {
	switch f := fn.(type) {
	case func(R, error):
		return invokerFunc(func(_ context.Context, recv, _, failure any) error {
			f(recv.(R), failure.(error))
			return nil
		})
	case func(R, error) error:
		return invokerFunc(func(_ context.Context, recv, _, failure any) error {
			return f(recv.(R), failure.(error))
		})
	case func(R, context.Context, error):
		return invokerFunc(func(ctx context.Context, recv, _, failure any) error {
			f(recv.(R), ctx, failure.(error))
			return nil
		})
	case func(R, context.Context, error) error:
		return invokerFunc(func(ctx context.Context, recv, _, failure any) error {
			return f(recv.(R), ctx, failure.(error))
		})
	}
	return nil
}

// reflectInvoker calls any accepted declaration through reflect.Value.Call.
type reflectInvoker struct {
	fn          reflect.Value
	params      []reflect.Type // after receiver and context
	withContext bool
	returnsErr  bool
	rank        int
	kind        handlerKind
}

func newReflectInvoker(d declaration) *reflectInvoker {
	ft := d.method.Type
	first := 1
	if d.withContext {
		first = 2
	}
	params := make([]reflect.Type, 0, ft.NumIn()-first)
	for i := first; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	return &reflectInvoker{
		fn:          d.method.Func,
		params:      params,
		withContext: d.withContext,
		returnsErr:  d.returnsErr,
		rank:        d.rank,
		kind:        d.kind,
	}
}

func (r *reflectInvoker) invoke(ctx context.Context, recv, ev, failure any) error {
	in := make([]reflect.Value, 0, 2+len(r.params))
	in = append(in, reflect.ValueOf(recv))
	if r.withContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}

	switch {
	case r.kind == kindEvent, r.rank == rankEventOnly:
		in = append(in, argValue(ev, r.params[0]))
	case r.rank == rankEventFailure:
		in = append(in, argValue(ev, r.params[0]), argValue(failure, r.params[1]))
	default:
		in = append(in, argValue(failure, r.params[0]))
	}

	out := r.fn.Call(in)
	if r.returnsErr {
		if err, _ := out[0].Interface().(error); err != nil {
			return err
		}
	}
	return nil
}

func argValue(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}
