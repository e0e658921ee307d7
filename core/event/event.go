package event

import (
	"reflect"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event marks values that can be posted to a bus.
// Types satisfy it by embedding Base.
type Event interface {
	isEvent()
}

// Cancelable is an event whose delivery can be stopped by a handler.
// The flag is one-way: once canceled, an event stays canceled.
type Cancelable interface {
	Event
	Cancel()
	Canceled() bool
}

// Modifiable is an event that records whether a handler changed it.
// The flag is one-way, like Cancelable.
type Modifiable interface {
	Event
	MarkModified()
	Modified() bool
}

// Base is the root event type. Embed it to make a struct an Event.
//
// Example:
//
//	type UserCreated struct {
//	    event.Base
//	    UserID string
//	}
type Base struct{}

func (Base) isEvent() {}

// Cancellation implements the cancel state of Cancelable.
// Embed it next to Base; it does not make a type an Event on its own.
//
// Events embedding Cancellation must be posted by pointer so that
// handlers share the same flag.
type Cancellation struct {
	canceled atomic.Bool
}

// Cancel marks the event as canceled.
func (c *Cancellation) Cancel() {
	c.canceled.Store(true)
}

// Canceled reports whether Cancel was called.
func (c *Cancellation) Canceled() bool {
	return c.canceled.Load()
}

// Modification implements the modified state of Modifiable.
type Modification struct {
	modified atomic.Bool
}

// MarkModified marks the event as modified.
func (m *Modification) MarkModified() {
	m.modified.Store(true)
}

// Modified reports whether MarkModified was called.
func (m *Modification) Modified() bool {
	return m.modified.Load()
}

// Meta carries optional identity for an event.
// Embed it to get a stable ID and creation time for logging and tracing.
type Meta struct {
	ID        string    `json:"id"`         // Unique identifier for the event
	Name      string    `json:"name"`       // Event type name (e.g., "UserCreated")
	CreatedAt time.Time `json:"created_at"` // When the event was created
}

// NewMeta creates metadata for ev with an auto-generated ID and timestamp.
// The name is derived from the event type using reflection.
//
// Example:
//
//	evt := &UserCreated{Meta: event.NewMeta(UserCreated{}), UserID: "123"}
//	// evt.Name == "UserCreated"
func NewMeta(ev any) Meta {
	return Meta{
		ID:        uuid.New().String(),
		Name:      Name(ev),
		CreatedAt: time.Now(),
	}
}

// EventMeta returns the metadata. It lets the bus pick up the ID of events embedding Meta.
func (m Meta) EventMeta() Meta {
	return m
}

// Name extracts the type name from an event value, unwrapping any pointer types.
// Returns only the bare type name without package path (e.g., "UserCreated").
func Name(v any) string {
	if v == nil {
		return ""
	}
	return TypeName(reflect.TypeOf(v))
}

// TypeName returns the bare name of t, unwrapping pointers.
// Unnamed types fall back to their string form.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
