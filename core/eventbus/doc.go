// Package eventbus provides an in-process, synchronous event dispatcher.
//
// Subscribers are ordinary values whose methods follow a naming convention.
// The bus discovers those methods by reflection, compiles them into callable
// targets once, and routes posted events to them in a deterministic order.
// Failed handlers never abort a dispatch; their failures are handed to failure
// handlers declared the same way.
//
// # Declaring Handlers
//
// Methods prefixed with "On" are event handlers, methods prefixed with
// "Recover" are failure handlers (see WithHandlerPrefix, WithFailurePrefix).
// An optional context.Context may come first and an optional error may be returned:
//
//	type Audit struct{ log []string }
//
//	func (a *Audit) OnOrderPlaced(evt *OrderPlaced)                        {}
//	func (a *Audit) OnAnyEvent(ctx context.Context, evt event.Event) error { return nil }
//
//	// failure handlers, in tie-break order
//	func (a *Audit) RecoverOrder(evt *OrderPlaced, err *PaymentError) {}
//	func (a *Audit) RecoverOrderEvent(evt *OrderPlaced)                {}
//	func (a *Audit) RecoverAny(err error)                              {}
//
//	func (a *Audit) EventTags() eventbus.Tags {
//	    return eventbus.Tags{"OnOrderPlaced": {Priority: 10, RunIfCanceled: true}}
//	}
//
// Methods with any other signature are ignored. Subscribe only considers
// pointer-receiver methods; SubscribeStatic only considers value-receiver methods,
// invoked on the zero value of the type.
//
// # Lifetime
//
// Subscribe holds its subscriber through a weak pointer. When the subscriber
// becomes unreachable its handlers stop running and are removed, either by a
// runtime cleanup or the next time a dispatch meets them:
//
//	eventbus.Subscribe(bus, &Audit{})  // lives until collected or unsubscribed
//	eventbus.SubscribeStatic[Metrics](bus) // lives until UnsubscribeStatic
//
// # Ordering
//
// An event is delivered as its own type, as each exported embedded event type
// (breadth-first) and as every interface handlers were registered for that it
// implements. Handlers run by descending priority; equal priorities keep the
// more specific type first, then registration order. Methods of one subscriber
// register in alphabetical order.
//
// # Cancellation
//
// For events implementing event.Cancelable the CancelMode decides what happens
// after a handler calls Cancel:
//
//   - Respect (default): only handlers tagged RunIfCanceled keep running;
//   - Ignore: every handler runs;
//   - Enforce: dispatch stops immediately, and a pre-canceled event reaches no one.
//
// # Failures
//
// A returned error is an ordinary failure; a panic, or an error wrapped with
// Fatal, is fatal. Every failure handler matching the event type and, if it
// declares one, the error type (errors.As semantics) is invoked, by descending
// priority then (event, error), (event), (error) shape. When none matches, an
// ordinary failure is logged and swallowed while a fatal one is returned from
// Post as *UnhandledError. Errors and panics raised by failure handlers are
// returned from Post as *FailureHandlerError without further routing.
//
// # Concurrency
//
// All registration state sits behind one lock per bus, never held while a
// handler runs. Post may be called from many goroutines; each call runs its
// handlers in order on its own goroutine.
package eventbus
