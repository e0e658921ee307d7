package eventbus

import (
	"cmp"
	"reflect"
	"slices"
	"sort"
)

// handler is one registered method, event or failure handler.
type handler struct {
	owner    owner
	name     string
	priority int
	invoker  invoker

	// event handlers
	runIfCanceled bool

	// failure handlers
	rank        int
	failureType reflect.Type
}

// resolved is a handler bound to the hierarchy node it was found under.
type resolved struct {
	*handler
	path node
}

func compareEventHandlers(a, b *handler) int {
	return cmp.Compare(b.priority, a.priority)
}

func compareFailureHandlers(a, b *handler) int {
	if c := cmp.Compare(b.priority, a.priority); c != 0 {
		return c
	}
	return cmp.Compare(a.rank, b.rank)
}

// registry is a registration table plus its two cache levels:
// hierarchy walks per concrete type and merged handler lists per concrete type.
// The bus lock guards every field.
type registry struct {
	entries map[reflect.Type][]*handler
	ifaces  []reflect.Type
	compare func(a, b *handler) int
	withAny bool

	walks    map[reflect.Type][]node
	resolved map[reflect.Type][]resolved
}

func newRegistry(compare func(a, b *handler) int, withAny bool) *registry {
	return &registry{
		entries:  make(map[reflect.Type][]*handler),
		compare:  compare,
		withAny:  withAny,
		walks:    make(map[reflect.Type][]node),
		resolved: make(map[reflect.Type][]resolved),
	}
}

// insert adds h under key after every entry that does not sort after it,
// which keeps equal entries in registration order.
func (r *registry) insert(key reflect.Type, h *handler) {
	list := r.entries[key]
	if len(list) == 0 && key.Kind() == reflect.Interface {
		r.ifaces = append(r.ifaces, key)
		clear(r.walks)
	}

	i := sort.Search(len(list), func(i int) bool {
		return r.compare(h, list[i]) < 0
	})
	r.entries[key] = slices.Insert(list, i, h)
}

// remove drops the entries under key that belong to id or whose owner is gone.
// It returns the number of entries removed.
func (r *registry) remove(key reflect.Type, id any) int {
	list, ok := r.entries[key]
	if !ok {
		return 0
	}

	kept := slices.DeleteFunc(list, func(h *handler) bool {
		if h.owner.id() == id {
			return true
		}
		_, alive := h.owner.receiver()
		return !alive
	})
	removed := len(list) - len(kept)
	clear(list[len(kept):])

	if len(kept) > 0 {
		r.entries[key] = kept
		return removed
	}

	delete(r.entries, key)
	if key.Kind() == reflect.Interface {
		r.ifaces = slices.DeleteFunc(r.ifaces, func(t reflect.Type) bool { return t == key })
		clear(r.walks)
	}
	return removed
}

func (r *registry) invalidate() {
	clear(r.resolved)
}

func (r *registry) count() int {
	n := 0
	for _, list := range r.entries {
		n += len(list)
	}
	return n
}

// cached returns the merged list for t if one was computed since the last mutation.
func (r *registry) cached(t reflect.Type) ([]resolved, bool) {
	list, ok := r.resolved[t]
	return list, ok
}

// resolve computes and caches the merged, sorted handler list for concrete type t.
func (r *registry) resolve(t reflect.Type) []resolved {
	if list, ok := r.resolved[t]; ok {
		return list
	}

	nodes, ok := r.walks[t]
	if !ok {
		nodes = walkHierarchy(t, r.ifaces, r.withAny)
		r.walks[t] = nodes
	}

	var list []resolved
	for _, n := range nodes {
		for _, h := range r.entries[n.typ] {
			list = append(list, resolved{handler: h, path: n})
		}
	}
	slices.SortStableFunc(list, func(a, b resolved) int {
		return r.compare(a.handler, b.handler)
	})

	r.resolved[t] = list
	return list
}
