package eventbus

import (
	"errors"
	"fmt"
)

var (
	// ErrNilEvent is returned when posting a nil event or a nil event pointer.
	ErrNilEvent = errors.New("event is nil")

	// ErrNilSubscriber is returned when subscribing a nil pointer.
	ErrNilSubscriber = errors.New("subscriber is nil")

	// ErrZeroSizeSubscriber is returned for subscribers of zero-size types.
	// Pointers to zero-size values may share an address, so they have no identity;
	// subscribe such types with SubscribeStatic instead.
	ErrZeroSizeSubscriber = errors.New("subscriber type has zero size")

	// ErrInvalidStaticType is returned when a static subscriber type is nil, a pointer or an interface.
	ErrInvalidStaticType = errors.New("static subscriber must be a non-pointer, non-interface type")

	// ErrUnknownCancelMode is returned when parsing an unknown cancel mode name.
	ErrUnknownCancelMode = errors.New("unknown cancel mode")
)

// PanicError is the failure produced when a handler panics.
// Panics are fatal: unless a failure handler accepts them, Post returns them.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error, so failure handlers
// declared for a specific error type also see panics carrying that type.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Fatal reports that panics always escape when unhandled.
func (e *PanicError) Fatal() bool { return true }

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }
func (e *fatalError) Fatal() bool   { return true }

// Fatal marks err as fatal. An unhandled fatal failure is returned from Post
// instead of being logged and swallowed. Fatal(nil) returns nil.
//
// Example:
//
//	func (l *Ledger) OnOrderPlaced(evt *OrderPlaced) error {
//	    if err := l.store(evt); err != nil {
//	        return eventbus.Fatal(err)
//	    }
//	    return nil
//	}
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether any error in err's chain is marked fatal.
// Panics recovered from handlers are always fatal.
func IsFatal(err error) bool {
	var f interface{ Fatal() bool }
	return errors.As(err, &f) && f.Fatal()
}

// UnhandledError is returned from Post when a fatal failure found no failure handler.
type UnhandledError struct {
	EventType string
	Handler   string
	Err       error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("unhandled failure in %s while dispatching %s: %v", e.Handler, e.EventType, e.Err)
}

func (e *UnhandledError) Unwrap() error { return e.Err }

// FailureHandlerError is returned from Post when a failure handler itself fails.
// Such failures are never routed again; the rest of the dispatch is abandoned.
type FailureHandlerError struct {
	EventType string
	Handler   string
	// Failure is the original handler failure that was being routed.
	Failure error
	Err     error
}

func (e *FailureHandlerError) Error() string {
	return fmt.Sprintf("failure handler %s failed while dispatching %s: %v", e.Handler, e.EventType, e.Err)
}

func (e *FailureHandlerError) Unwrap() error { return e.Err }
