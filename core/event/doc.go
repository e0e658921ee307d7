// Package event declares the capabilities a value needs to travel through an
// in-process event bus.
//
// Every event embeds Base. Optional capabilities are added by embedding mixins:
//
//	type OrderPlaced struct {
//	    event.Base
//	    event.Cancellation // makes *OrderPlaced an event.Cancelable
//	    event.Modification // makes *OrderPlaced an event.Modifiable
//	    event.Meta         // ID, Name and CreatedAt for logging
//
//	    OrderID string
//	}
//
// Cancellation and modification flags are one-way: they start false and can
// only be set. Both use atomics, so handlers running on different goroutines
// observe each other's writes.
//
// # Hierarchies
//
// Go has no inheritance; embedding plays that role. A handler declared for
// *OrderEvent also receives *OrderPlaced when OrderPlaced embeds OrderEvent:
//
//	type OrderEvent struct {
//	    event.Base
//	    OrderID string
//	}
//
//	type OrderPlaced struct {
//	    OrderEvent
//	    Total float64
//	}
//
// Base itself is the root of every hierarchy and is never matched on its own.
// Use the Event interface to receive every event.
//
// # Metadata
//
// NewMeta generates a UUID and timestamp. The context helpers (WithMeta,
// EventID, EventName, DispatchID) carry the same data to handlers.
package event
