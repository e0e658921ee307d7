package eventbus

import (
	"reflect"
	"weak"
)

// owner is the subscriber a handler belongs to.
type owner interface {
	// id is the subscriber identity used by the ownership index.
	id() any
	// receiver returns the value to call methods on; false once the subscriber is gone.
	receiver() (any, bool)
}

// weakOwner holds an instance subscriber without keeping it reachable.
// weak.Pointer values compare equal iff made from the same pointer, even after collection,
// so the pointer itself serves as the identity.
type weakOwner[T any] struct {
	ptr weak.Pointer[T]
}

func (o weakOwner[T]) id() any { return o.ptr }

func (o weakOwner[T]) receiver() (any, bool) {
	if p := o.ptr.Value(); p != nil {
		return p, true
	}
	return nil, false
}

// staticOwner is a type-level subscriber; methods run on the zero value of typ.
type staticOwner struct {
	typ  reflect.Type
	zero any
}

func newStaticOwner(t reflect.Type) staticOwner {
	return staticOwner{typ: t, zero: reflect.Zero(t).Interface()}
}

func (o staticOwner) id() any { return o.typ }

func (o staticOwner) receiver() (any, bool) { return o.zero, true }
