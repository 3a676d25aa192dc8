package index

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Entity is anything that can be stored in a KeyTreeMap. Entities are
// compared by identity, so pointer types are the usual choice.
type Entity interface {
	comparable
	Keys() []Key
}

// KeyTreeMap indexes entities by every key they report. It keeps one
// MultiMap per KeyDefinition ID, created the first time a key of that
// definition is seen.
//
// The map records the keys it indexed for each entity, so removal and
// updates work from what was indexed, not from what the entity reports now.
// A KeyTreeMap is not safe for concurrent use.
type KeyTreeMap[E Entity] struct {
	arena   *arena[E]
	maps    map[string]*MultiMap[E]
	defs    map[string]KeyDefinition
	indexed map[uint32]map[string]Key
	degree  int
}

// NewKeyTreeMap returns an empty map.
func NewKeyTreeMap[E Entity](opts ...Option) *KeyTreeMap[E] {
	o := applyOptions(opts)
	return &KeyTreeMap[E]{
		arena:   newArena[E](),
		maps:    map[string]*MultiMap[E]{},
		defs:    map[string]KeyDefinition{},
		indexed: map[uint32]map[string]Key{},
		degree:  o.degree,
	}
}

// Put indexes e under every key it reports. Putting an entity that is
// already present brings the index in line with its current keys: values
// already indexed are left alone, stale ones are removed and new ones added.
func (k *KeyTreeMap[E]) Put(e E) error {
	keys := e.Keys()
	next := make(map[string]Key, len(keys))
	for _, key := range keys {
		if _, dup := next[key.def.id]; dup {
			return fmt.Errorf("putting entity: %w: %s", ErrDuplicateDefinition, key.def)
		}
		next[key.def.id] = key
	}

	h, present := k.arena.handle(e)
	if !present {
		h = k.arena.acquire(e)
		k.indexed[h] = map[string]Key{}
	}
	current := k.indexed[h]
	for id, old := range current {
		if _, ok := next[id]; !ok {
			k.apply(e, old.def, Delta(old, Key{def: old.def}))
			delete(current, id)
		}
	}
	for id, key := range next {
		k.apply(e, key.def, Delta(current[id], key))
		current[id] = key
	}
	return nil
}

// Remove deletes every entry contributed by e. It returns false if e was not
// in the map.
func (k *KeyTreeMap[E]) Remove(e E) bool {
	h, ok := k.arena.handle(e)
	if !ok {
		return false
	}
	for _, key := range k.indexed[h] {
		k.apply(e, key.def, Delta(key, Key{def: key.def}))
	}
	delete(k.indexed, h)
	k.arena.release(h)
	return true
}

// UpdateKey replaces the indexed key of next's definition on e with next,
// writing only the difference between the two. The update is rejected,
// with nothing changed, when e is not in the map or the definition is not
// updatable. An entity without a key of that definition gains one.
func (k *KeyTreeMap[E]) UpdateKey(e E, next Key) (Change, error) {
	if !next.def.updatable {
		return Change{}, fmt.Errorf("updating key %s: %w", next.def, ErrNotUpdatable)
	}
	h, ok := k.arena.handle(e)
	if !ok {
		return Change{}, fmt.Errorf("updating key %s: %w", next.def, ErrNotIndexed)
	}
	current := k.indexed[h]
	c := Delta(current[next.def.id], next)
	k.apply(e, next.def, c)
	current[next.def.id] = next
	return c, nil
}

// RemoveKey drops the indexed key of def from e. The entity stays in the
// map. It returns false if e had no such key.
func (k *KeyTreeMap[E]) RemoveKey(e E, def KeyDefinition) bool {
	h, ok := k.arena.handle(e)
	if !ok {
		return false
	}
	key, ok := k.indexed[h][def.id]
	if !ok {
		return false
	}
	k.apply(e, key.def, Delta(key, Key{def: key.def}))
	delete(k.indexed[h], def.id)
	return true
}

// IndexedKey returns the key of def that is currently indexed for e.
func (k *KeyTreeMap[E]) IndexedKey(e E, def KeyDefinition) (Key, bool) {
	h, ok := k.arena.handle(e)
	if !ok {
		return Key{}, false
	}
	key, ok := k.indexed[h][def.id]
	return key, ok
}

func (k *KeyTreeMap[E]) apply(e E, def KeyDefinition, c Change) {
	if c.IsEmpty() {
		return
	}
	m := k.maps[def.id]
	if m == nil {
		m = newMultiMap(k.arena, k.degree)
		k.maps[def.id] = m
		k.defs[def.id] = def
	}
	for _, v := range c.Removed {
		m.Remove(v, e)
	}
	for _, v := range c.Added {
		m.Put(v, e)
	}
	if m.Len() == 0 {
		delete(k.maps, def.id)
		delete(k.defs, def.id)
	}
}

// Contains reports whether e is in the map.
func (k *KeyTreeMap[E]) Contains(e E) bool {
	_, ok := k.arena.handle(e)
	return ok
}

// Len is the number of entities in the map.
func (k *KeyTreeMap[E]) Len() int { return len(k.indexed) }

// All returns every entity in the order it was first put.
func (k *KeyTreeMap[E]) All() []E {
	hs := make([]uint32, 0, len(k.indexed))
	for h := range k.indexed {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	out := make([]E, len(hs))
	for i, h := range hs {
		out[i] = k.arena.entity(h)
	}
	return out
}

// Definitions returns the definitions that currently have entries, ordered
// by ID.
func (k *KeyTreeMap[E]) Definitions() []KeyDefinition {
	defs := make([]KeyDefinition, 0, len(k.defs))
	for _, d := range k.defs {
		defs = append(defs, d)
	}
	slices.SortFunc(defs, KeyDefinition.Compare)
	return defs
}

// Get returns the value index of def. An unknown definition yields an empty
// MultiMap. The returned map is live and must not be modified.
func (k *KeyTreeMap[E]) Get(def KeyDefinition) *MultiMap[E] {
	if m, ok := k.maps[def.id]; ok {
		return m
	}
	return newMultiMap(k.arena, k.degree)
}

// Select returns a query evaluated against this map each time it is run.
// The query follows the map as definitions come and go.
func (k *KeyTreeMap[E]) Select(m Matcher) *Select[E] {
	return &Select[E]{
		source:  func() *MultiMap[E] { return k.maps[m.Definition.id] },
		matcher: m,
	}
}

// SelectEqual returns the entities with a value equal to v under def.
func (k *KeyTreeMap[E]) SelectEqual(def KeyDefinition, v Value) []E {
	return k.Select(Exact(def, v, false)).All()
}

// SelectRange returns the entities with a value under def between lo and hi.
func (k *KeyTreeMap[E]) SelectRange(def KeyDefinition, lo, hi Bound) ([]E, error) {
	m, err := Range(def, lo, hi)
	if err != nil {
		return nil, err
	}
	return k.Select(m).All(), nil
}

// SelectAll returns every entity with at least one value under def.
func (k *KeyTreeMap[E]) SelectAll(def KeyDefinition) []E {
	return k.Select(Any(def)).All()
}

// First returns the entity holding the smallest value under def.
func (k *KeyTreeMap[E]) First(def KeyDefinition) (E, error) {
	return k.Select(Any(def)).First()
}

// Last returns the entity holding the largest value under def.
func (k *KeyTreeMap[E]) Last(def KeyDefinition) (E, error) {
	return k.Select(Any(def)).Last()
}

// String renders the value indexes as a table.
func (k *KeyTreeMap[E]) String() string {
	tw := table.NewWriter()
	tw.SetTitle("KEY TREE MAP")
	tw.AppendHeader(table.Row{"Definition", "Keys", "Entries", "Values"})
	for _, d := range k.Definitions() {
		m := k.maps[d.id]
		keys := m.Keys()
		vals := make([]string, len(keys))
		for i, v := range keys {
			vals[i] = fmt.Sprintf("%s(%d)", v, len(m.Get(v)))
		}
		tw.AppendRow(table.Row{d.ID(), m.Len(), m.Size(), strings.Join(vals, " ")})
	}
	tw.AppendFooter(table.Row{"Entities", k.Len()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 60},
	})
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
