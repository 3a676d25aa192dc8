package index

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"
)

const defaultDegree = 16

// Option configures a MultiMap or KeyTreeMap.
type Option func(*options)

type options struct {
	degree int
}

// WithDegree sets the degree of the B-trees backing each value index.
func WithDegree(d int) Option {
	return func(o *options) {
		if d >= 2 {
			o.degree = d
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{degree: defaultDegree}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// bucket holds every entity mapped under one key. Entities are stored as
// arena handles, so iterating the bitmap yields them in insertion order.
type bucket struct {
	key     Value
	handles *roaring.Bitmap
}

func lessBucket(a, b *bucket) bool { return a.key.less(b.key) }

func pivot(v Value) *bucket { return &bucket{key: v} }

// Bound is one end of a range query.
type Bound struct {
	Value     Value
	Inclusive bool
	Unbounded bool
}

// Inclusive returns a bound that includes v.
func Inclusive(v Value) Bound { return Bound{Value: v, Inclusive: true} }

// Exclusive returns a bound that excludes v.
func Exclusive(v Value) Bound { return Bound{Value: v} }

// Unbounded returns an open end.
func Unbounded() Bound { return Bound{Unbounded: true} }

// MultiMap is an ordered one-to-many map from Value to E. Keys are kept in
// index order (see Value), each key maps to a set of entities, and an entity
// is stored at most once per key.
type MultiMap[E comparable] struct {
	tree  *btree.BTreeG[*bucket]
	arena *arena[E]
	size  int
}

// NewMultiMap returns an empty MultiMap.
func NewMultiMap[E comparable](opts ...Option) *MultiMap[E] {
	o := applyOptions(opts)
	return newMultiMap(newArena[E](), o.degree)
}

func newMultiMap[E comparable](a *arena[E], degree int) *MultiMap[E] {
	return &MultiMap[E]{
		tree:  btree.NewG(degree, lessBucket),
		arena: a,
	}
}

// Put maps e under k. It returns false if the mapping was already present.
func (m *MultiMap[E]) Put(k Value, e E) bool {
	b, ok := m.tree.Get(pivot(k))
	if !ok {
		b = &bucket{key: k, handles: roaring.New()}
		m.tree.ReplaceOrInsert(b)
	}
	if h, ok := m.arena.handle(e); ok && b.handles.Contains(h) {
		return false
	}
	b.handles.Add(m.arena.acquire(e))
	m.size++
	return true
}

// Remove deletes the mapping from k to e. It returns false if there was none.
func (m *MultiMap[E]) Remove(k Value, e E) bool {
	b, ok := m.tree.Get(pivot(k))
	if !ok {
		return false
	}
	h, ok := m.arena.handle(e)
	if !ok || !b.handles.CheckedRemove(h) {
		return false
	}
	m.arena.release(h)
	m.size--
	if b.handles.IsEmpty() {
		m.tree.Delete(b)
	}
	return true
}

// RemoveAll deletes k and returns the entities that were mapped under it.
func (m *MultiMap[E]) RemoveAll(k Value) []E {
	b, ok := m.tree.Delete(pivot(k))
	if !ok {
		return nil
	}
	out := m.entities(b)
	for _, h := range b.handles.ToArray() {
		m.arena.release(h)
	}
	m.size -= len(out)
	return out
}

// Get returns the entities mapped under k, in insertion order.
func (m *MultiMap[E]) Get(k Value) []E {
	b, ok := m.tree.Get(pivot(k))
	if !ok {
		return nil
	}
	return m.entities(b)
}

// Contains reports whether any entity is mapped under k.
func (m *MultiMap[E]) Contains(k Value) bool {
	return m.tree.Has(pivot(k))
}

// ContainsEntry reports whether e is mapped under k.
func (m *MultiMap[E]) ContainsEntry(k Value, e E) bool {
	b, ok := m.tree.Get(pivot(k))
	if !ok {
		return false
	}
	h, ok := m.arena.handle(e)
	return ok && b.handles.Contains(h)
}

// Len is the number of distinct keys.
func (m *MultiMap[E]) Len() int { return m.tree.Len() }

// Size is the number of key/entity mappings.
func (m *MultiMap[E]) Size() int { return m.size }

// Keys returns every key in order.
func (m *MultiMap[E]) Keys() []Value {
	keys := make([]Value, 0, m.tree.Len())
	m.tree.Ascend(func(b *bucket) bool {
		keys = append(keys, b.key)
		return true
	})
	return keys
}

// KeysInRange returns the keys between lo and hi in order. Bounded ends must
// be of comparable kinds; a range spanning kinds yields a *TypeMismatchError.
func (m *MultiMap[E]) KeysInRange(lo, hi Bound) ([]Value, error) {
	if err := checkBounds(lo, hi); err != nil {
		return nil, err
	}
	var keys []Value
	m.ascend(lo, hi, func(b *bucket) bool {
		keys = append(keys, b.key)
		return true
	})
	return keys, nil
}

// Ceiling returns the smallest key comparable with v that is >= v.
func (m *MultiMap[E]) Ceiling(v Value) (Value, bool) {
	var out Value
	var found bool
	m.ascend(Inclusive(v), Unbounded(), func(b *bucket) bool {
		out, found = b.key, true
		return false
	})
	return out, found
}

// Floor returns the largest key comparable with v that is <= v.
func (m *MultiMap[E]) Floor(v Value) (Value, bool) {
	var out Value
	var found bool
	m.descend(Unbounded(), Inclusive(v), func(b *bucket) bool {
		out, found = b.key, true
		return false
	})
	return out, found
}

// FirstKey returns the smallest key, or ErrEmptyResult.
func (m *MultiMap[E]) FirstKey() (Value, error) {
	b, ok := m.tree.Min()
	if !ok {
		return Value{}, ErrEmptyResult
	}
	return b.key, nil
}

// LastKey returns the largest key, or ErrEmptyResult.
func (m *MultiMap[E]) LastKey() (Value, error) {
	b, ok := m.tree.Max()
	if !ok {
		return Value{}, ErrEmptyResult
	}
	return b.key, nil
}

// Values returns every distinct entity, ordered by the smallest key it is
// mapped under.
func (m *MultiMap[E]) Values() []E {
	return m.collect(func(fn func(*bucket) bool) {
		m.tree.Ascend(fn)
	})
}

func (m *MultiMap[E]) entities(b *bucket) []E {
	out := make([]E, 0, b.handles.GetCardinality())
	it := b.handles.Iterator()
	for it.HasNext() {
		out = append(out, m.arena.entity(it.Next()))
	}
	return out
}

// collect gathers the entities of the buckets visited by walk, skipping
// entities already seen in earlier buckets.
func (m *MultiMap[E]) collect(walk func(func(*bucket) bool)) []E {
	seen := roaring.New()
	var out []E
	walk(func(b *bucket) bool {
		it := b.handles.Iterator()
		for it.HasNext() {
			h := it.Next()
			if seen.CheckedAdd(h) {
				out = append(out, m.arena.entity(h))
			}
		}
		return true
	})
	return out
}

// checkBounds rejects ranges whose ends are of incomparable kinds.
func checkBounds(lo, hi Bound) error {
	if lo.Unbounded || hi.Unbounded || lo.Value.Comparable(hi.Value) {
		return nil
	}
	return &TypeMismatchError{Want: lo.Value.kind, Got: hi.Value.kind}
}

// region returns the search pivots for a range. A range with one bounded end
// is confined to the kind of that end.
func region(lo, hi Bound) (low, high Value, rank int, all bool) {
	switch {
	case lo.Unbounded && hi.Unbounded:
		return Value{}, Value{}, 0, true
	case lo.Unbounded:
		return lowest(hi.Value.kind), hi.Value, hi.Value.kind.rank(), false
	case hi.Unbounded:
		return lo.Value, highest(lo.Value.kind), lo.Value.kind.rank(), false
	default:
		return lo.Value, hi.Value, lo.Value.kind.rank(), false
	}
}

// bucketWalker is the view of a MultiMap that matchers scan.
type bucketWalker interface {
	exact(v Value, fn func(*bucket) bool)
	all(reverse bool, fn func(*bucket) bool)
	ascend(lo, hi Bound, fn func(*bucket) bool)
	descend(lo, hi Bound, fn func(*bucket) bool)
}

func (m *MultiMap[E]) exact(v Value, fn func(*bucket) bool) {
	if b, ok := m.tree.Get(pivot(v)); ok {
		fn(b)
	}
}

func (m *MultiMap[E]) all(reverse bool, fn func(*bucket) bool) {
	if reverse {
		m.tree.Descend(fn)
		return
	}
	m.tree.Ascend(fn)
}

// ascend visits the buckets between lo and hi in increasing order until fn
// returns false. The bounds must already have passed checkBounds.
func (m *MultiMap[E]) ascend(lo, hi Bound, fn func(*bucket) bool) {
	low, high, rank, all := region(lo, hi)
	if all {
		m.tree.Ascend(fn)
		return
	}
	m.tree.AscendGreaterOrEqual(pivot(low), func(b *bucket) bool {
		if b.key.kind.rank() != rank {
			return false
		}
		if !lo.Unbounded && !lo.Inclusive && b.key.order(low) == 0 {
			return true
		}
		if c := b.key.order(high); c > 0 || (c == 0 && !hi.Unbounded && !hi.Inclusive) {
			return false
		}
		return fn(b)
	})
}

// descend is ascend in decreasing order.
func (m *MultiMap[E]) descend(lo, hi Bound, fn func(*bucket) bool) {
	low, high, rank, all := region(lo, hi)
	if all {
		m.tree.Descend(fn)
		return
	}
	m.tree.DescendLessOrEqual(pivot(high), func(b *bucket) bool {
		if b.key.kind.rank() != rank {
			return false
		}
		if !hi.Unbounded && !hi.Inclusive && b.key.order(high) == 0 {
			return true
		}
		if c := b.key.order(low); c < 0 || (c == 0 && !lo.Unbounded && !lo.Inclusive) {
			return false
		}
		return fn(b)
	})
}
