package eventbus

import (
	"context"
	"reflect"
	"strings"

	"github.com/dmitrymomot/eventbus/core/event"
)

// Tag holds the marker attributes of a handler method.
type Tag struct {
	// Priority orders handlers of the same event; higher runs first. Default 0.
	Priority int

	// RunIfCanceled lets an event handler run for canceled events in Respect mode.
	// Ignored on failure handlers.
	RunIfCanceled bool
}

// Tags maps handler method names to their attributes.
type Tags map[string]Tag

// Tagger is implemented by subscribers that set attributes on their handlers.
// Methods missing from the map use the zero Tag.
//
// Example:
//
//	func (a *Audit) EventTags() eventbus.Tags {
//	    return eventbus.Tags{
//	        "OnOrderPlaced": {Priority: 10},
//	        "OnAnyEvent":    {RunIfCanceled: true},
//	    }
//	}
type Tagger interface {
	EventTags() Tags
}

type handlerKind uint8

const (
	kindEvent handlerKind = iota
	kindFailure
)

// Failure handler signature shapes, in tie-break order.
const (
	rankEventFailure = iota // (E, X)
	rankEventOnly           // (E)
	rankFailureOnly         // (X)
)

var (
	eventIface   = reflect.TypeFor[event.Event]()
	errorIface   = reflect.TypeFor[error]()
	contextIface = reflect.TypeFor[context.Context]()
	rootType     = reflect.TypeFor[event.Base]()
	rootPtrType  = reflect.PointerTo(rootType)
)

// anyEvent is the key under which failure handlers without an event parameter are filed.
type anyEvent struct{}

var anyEventType = reflect.TypeFor[anyEvent]()

// declaration is a method the validator accepted.
type declaration struct {
	method      reflect.Method
	kind        handlerKind
	rank        int
	withContext bool
	returnsErr  bool
	eventType   reflect.Type // anyEventType for failure-only handlers
	failureType reflect.Type // nil when every failure is accepted
	tag         Tag
}

// prefixes are the method-name markers of handlers.
type prefixes struct {
	handler string
	failure string
}

func (p prefixes) kindOf(name string) (handlerKind, bool) {
	h := strings.HasPrefix(name, p.handler)
	f := strings.HasPrefix(name, p.failure)
	switch {
	case h && f:
		// The longer prefix is the more specific marker.
		if len(p.failure) >= len(p.handler) {
			return kindFailure, true
		}
		return kindEvent, true
	case h:
		return kindEvent, true
	case f:
		return kindFailure, true
	default:
		return 0, false
	}
}

// isEventType reports whether t can key a handler: it satisfies event.Event and is not the root.
func isEventType(t reflect.Type) bool {
	return t != nil && t != rootType && t != rootPtrType && t.Implements(eventIface)
}

func isErrorType(t reflect.Type) bool {
	return t != nil && t.Implements(errorIface)
}

// classify decides whether m, taken from the method set of recv, is a handler.
// static selects value-receiver methods; otherwise only pointer-receiver methods qualify.
// On rejection it returns a short reason for debug logs.
func classify(recv reflect.Type, m reflect.Method, static bool, p prefixes, tags Tags) (declaration, string) {
	kind, ok := p.kindOf(m.Name)
	if !ok {
		return declaration{}, ""
	}

	if !static {
		if recv.Kind() != reflect.Pointer {
			return declaration{}, "instance subscriber is not a pointer"
		}
		if !pointerReceiver(recv.Elem(), m.Name) {
			return declaration{}, "value receiver on instance subscriber"
		}
	} else if pointerReceiver(recv, m.Name) {
		return declaration{}, "pointer receiver on static subscriber"
	}

	ft := m.Type
	if ft.IsVariadic() {
		return declaration{}, "variadic"
	}

	d := declaration{method: m, kind: kind, tag: tags[m.Name]}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != errorIface {
			return declaration{}, "result is not error"
		}
		d.returnsErr = true
	default:
		return declaration{}, "too many results"
	}

	// Skip the receiver, then an optional context.
	params := make([]reflect.Type, 0, ft.NumIn()-1)
	for i := 1; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	if len(params) > 0 && params[0] == contextIface {
		d.withContext = true
		params = params[1:]
	}

	if kind == kindEvent {
		if len(params) != 1 || !isEventType(params[0]) {
			return declaration{}, "event handler needs exactly one event parameter"
		}
		d.eventType = params[0]
		return d, ""
	}

	d.tag.RunIfCanceled = false

	switch len(params) {
	case 2:
		if !isEventType(params[0]) || !isErrorType(params[1]) {
			return declaration{}, "failure handler parameters must be (event, error)"
		}
		d.rank = rankEventFailure
		d.eventType = params[0]
		d.failureType = failureFilter(params[1])
	case 1:
		isEvent, isErr := isEventType(params[0]), isErrorType(params[0])
		switch {
		case isEvent && isErr:
			return declaration{}, "parameter is both an event and an error"
		case isEvent:
			d.rank = rankEventOnly
			d.eventType = params[0]
		case isErr:
			d.rank = rankFailureOnly
			d.eventType = anyEventType
			d.failureType = failureFilter(params[0])
		default:
			return declaration{}, "parameter is neither an event nor an error"
		}
	default:
		return declaration{}, "failure handler needs one or two parameters"
	}

	return d, ""
}

// pointerReceiver reports whether method name of *t is declared with a pointer receiver.
// Methods promoted through embedded pointers sit in t's value method set, so the
// embedding chain is followed down to the type that declares the method.
func pointerReceiver(t reflect.Type, name string) bool {
	seen := make(map[reflect.Type]bool)
	for !seen[t] {
		seen[t] = true
		if _, ok := t.MethodByName(name); !ok {
			return true
		}
		src := promotingField(t, name)
		if src == nil {
			return false
		}
		if src.Kind() == reflect.Pointer {
			src = src.Elem()
		}
		t = src
	}
	return false
}

// promotingField returns the type of the embedded field of struct t that supplies
// method name, or nil when t declares it itself.
func promotingField(t reflect.Type, name string) reflect.Type {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var src reflect.Type
	best := -1
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		d := methodDepth(f.Type, name, map[reflect.Type]bool{t: true})
		if d >= 0 && (best < 0 || d < best) {
			best, src = d, f.Type
		}
	}
	return src
}

// methodDepth returns how many embedding levels below t method name is declared,
// or -1 when t does not have it.
func methodDepth(t reflect.Type, name string, seen map[reflect.Type]bool) int {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if seen[t] {
		return -1
	}
	if _, ok := reflect.PointerTo(t).MethodByName(name); !ok {
		return -1
	}
	if t.Kind() != reflect.Struct {
		return 0
	}

	seen[t] = true
	defer delete(seen, t)

	best := -1
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if d := methodDepth(f.Type, name, seen); d >= 0 && (best < 0 || d+1 < best) {
			best = d + 1
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// failureFilter returns the type a failure must match, or nil when plain error accepts all.
func failureFilter(t reflect.Type) reflect.Type {
	if t == errorIface {
		return nil
	}
	return t
}
