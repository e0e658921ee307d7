package eventbus

import (
	"reflect"
	"slices"
)

// node is one type a posted event can be delivered as.
type node struct {
	typ reflect.Type
	// index is the embedded field path from the posted value; nil means the value itself.
	index []int
	// elem delivers a copy of the struct a pointer on the path refers to.
	elem bool
}

// project converts the posted event into the value a handler keyed by n.typ expects.
// It reports false when an embedded pointer on the path is nil.
func (n node) project(ev any) (any, bool) {
	if n.index == nil && !n.elem {
		return ev, true
	}

	v := reflect.ValueOf(ev)
	if n.index != nil {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}

		f, err := v.FieldByIndexErr(n.index)
		if err != nil {
			return nil, false
		}
		v = f
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}
		if n.elem {
			return v.Elem().Interface(), true
		}
		return v.Interface(), true
	}
	if n.typ.Kind() == reflect.Pointer {
		if !v.CanAddr() {
			return nil, false
		}
		return v.Addr().Interface(), true
	}
	return v.Interface(), true
}

// walkHierarchy lists the types an event of type t is delivered as, most specific first:
// t itself, then exported embedded structs breadth-first, then the registered interface
// keys t implements in registration order, then the any-event key when withAny is set.
// Every pointer-to-struct node is followed by its struct type, delivered as a copy.
// event.Base is never included.
func walkHierarchy(t reflect.Type, ifaces []reflect.Type, withAny bool) []node {
	nodes := make([]node, 0, 8)
	visited := map[reflect.Type]struct{}{t: {}}

	add := func(key reflect.Type, index []int) {
		if !isEventType(key) {
			return
		}
		nodes = append(nodes, node{typ: key, index: index})

		if key.Kind() != reflect.Pointer || key.Elem().Kind() != reflect.Struct {
			return
		}
		elem := key.Elem()
		if _, seen := visited[elem]; seen || !isEventType(elem) {
			return
		}
		visited[elem] = struct{}{}
		nodes = append(nodes, node{typ: elem, index: index, elem: true})
	}
	add(t, nil)

	type item struct {
		typ         reflect.Type
		index       []int
		addressable bool
	}

	queue := []item{{typ: t, addressable: t.Kind() == reflect.Pointer}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		st := cur.typ
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		if st.Kind() != reflect.Struct {
			continue
		}

		for i := range st.NumField() {
			f := st.Field(i)
			if !f.Anonymous || !f.IsExported() {
				continue
			}

			key, addressable := f.Type, cur.addressable
			switch {
			case f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct:
				addressable = true
			case f.Type.Kind() == reflect.Struct:
				if cur.addressable {
					key = reflect.PointerTo(f.Type)
				}
			default:
				continue
			}

			if key == rootType || key == rootPtrType {
				continue
			}
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}

			index := append(slices.Clone(cur.index), i)
			add(key, index)
			queue = append(queue, item{typ: key, index: index, addressable: addressable})
		}
	}

	for _, iface := range ifaces {
		if _, seen := visited[iface]; !seen && t.Implements(iface) {
			nodes = append(nodes, node{typ: iface})
		}
	}

	if withAny {
		nodes = append(nodes, node{typ: anyEventType})
	}

	return nodes
}
