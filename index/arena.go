package index

// arena hands out stable uint32 handles for entities. Handles are allocated
// in increasing order and never reused, so sorting handles sorts entities by
// the time they first entered the arena. A handle lives as long as at least
// one reference to it is held.
type arena[E comparable] struct {
	handles  map[E]uint32
	entities map[uint32]E
	refs     map[uint32]int
	next     uint32
}

func newArena[E comparable]() *arena[E] {
	return &arena[E]{
		handles:  map[E]uint32{},
		entities: map[uint32]E{},
		refs:     map[uint32]int{},
	}
}

// acquire returns the handle of e, allocating one if needed, and takes a
// reference on it.
func (a *arena[E]) acquire(e E) uint32 {
	h, ok := a.handles[e]
	if !ok {
		h = a.next
		a.next++
		a.handles[e] = h
		a.entities[h] = e
	}
	a.refs[h]++
	return h
}

// release drops one reference on h, forgetting the entity when none remain.
func (a *arena[E]) release(h uint32) {
	a.refs[h]--
	if a.refs[h] > 0 {
		return
	}
	delete(a.refs, h)
	if e, ok := a.entities[h]; ok {
		delete(a.handles, e)
		delete(a.entities, h)
	}
}

func (a *arena[E]) handle(e E) (uint32, bool) {
	h, ok := a.handles[e]
	return h, ok
}

func (a *arena[E]) entity(h uint32) E {
	return a.entities[h]
}
