package index

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// KeyDefinition is a named attribute slot. Definitions are comparable and
// may be used as map keys; two definitions with the same ID and options are
// the same definition.
type KeyDefinition struct {
	id        string
	updatable bool
}

// DefinitionOption configures a KeyDefinition.
type DefinitionOption func(*KeyDefinition)

// Updatable marks keys of the definition as replaceable in place through
// KeyTreeMap.UpdateKey.
func Updatable() DefinitionOption {
	return func(d *KeyDefinition) {
		d.updatable = true
	}
}

// NewKeyDefinition returns the definition with the id.
func NewKeyDefinition(id string, opts ...DefinitionOption) KeyDefinition {
	d := KeyDefinition{id: id}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// UniqueUUID is the definition of the identity key every indexed entity
// should carry (see NewUUIDKey).
var UniqueUUID = NewKeyDefinition("uuid")

func (d KeyDefinition) ID() string        { return d.id }
func (d KeyDefinition) IsUpdatable() bool { return d.updatable }
func (d KeyDefinition) String() string    { return d.id }

// Compare orders definitions by ID.
func (d KeyDefinition) Compare(o KeyDefinition) int {
	return strings.Compare(d.id, o.id)
}

// Key binds a definition to a set of values for one entity. The values are
// kept sorted in index order with duplicates removed. Keys are immutable.
type Key struct {
	def    KeyDefinition
	values []Value
}

// NewKey returns a key holding the distinct values.
func NewKey(def KeyDefinition, values ...Value) Key {
	vs := slices.Clone(values)
	slices.SortFunc(vs, Value.order)
	vs = slices.CompactFunc(vs, func(a, b Value) bool { return a.order(b) == 0 })
	return Key{def: def, values: vs}
}

// KeyOf converts the raw Go values and returns a key holding them. The
// first value that cannot be converted fails the whole key; nothing is
// dropped silently.
func KeyOf(def KeyDefinition, raw ...any) (Key, error) {
	vs := make([]Value, 0, len(raw))
	for i, r := range raw {
		v, err := NewValue(r)
		if err != nil {
			return Key{}, fmt.Errorf("key %s, value %d: %w", def.id, i, err)
		}
		vs = append(vs, v)
	}
	return NewKey(def, vs...), nil
}

// NewUUIDKey returns a fresh identity key under the UniqueUUID definition.
func NewUUIDKey() Key {
	return NewKey(UniqueUUID, StringValue(uuid.NewString()))
}

func (k Key) Definition() KeyDefinition { return k.def }

// Values returns a copy of the key's values in index order.
func (k Key) Values() []Value { return slices.Clone(k.values) }

// Len is the number of distinct values.
func (k Key) Len() int { return len(k.values) }

// IsEmpty reports whether the key holds no values.
func (k Key) IsEmpty() bool { return len(k.values) == 0 }

// Has reports whether the key holds a value equal to v.
func (k Key) Has(v Value) bool {
	_, found := slices.BinarySearchFunc(k.values, v, Value.order)
	return found
}

// SingleValue returns the first value of the key, or ErrEmptyResult.
func (k Key) SingleValue() (Value, error) {
	if len(k.values) == 0 {
		return Value{}, fmt.Errorf("single value of key %s: %w", k.def.id, ErrEmptyResult)
	}
	return k.values[0], nil
}

// Equal reports whether k and o have the same definition and value set.
func (k Key) Equal(o Key) bool {
	return k.def == o.def && slices.EqualFunc(k.values, o.values, func(a, b Value) bool {
		return a.order(b) == 0
	})
}

// Compare orders keys by definition.
func (k Key) Compare(o Key) int { return k.def.Compare(o.def) }

func (k Key) String() string {
	s := make([]string, len(k.values))
	for i, v := range k.values {
		s[i] = v.String()
	}
	return k.def.id + "=[" + strings.Join(s, ", ") + "]"
}

// Change is the difference between two keys of the same definition.
type Change struct {
	Removed []Value // in the old key only
	Added   []Value // in the new key only
}

// IsEmpty reports whether applying the change would write nothing.
func (c Change) IsEmpty() bool { return len(c.Removed) == 0 && len(c.Added) == 0 }

// Delta computes the symmetric difference between old and next. A value
// present in both keys appears in neither list.
func Delta(old, next Key) Change {
	var c Change
	i, j := 0, 0
	for i < len(old.values) && j < len(next.values) {
		switch o := old.values[i].order(next.values[j]); {
		case o < 0:
			c.Removed = append(c.Removed, old.values[i])
			i++
		case o > 0:
			c.Added = append(c.Added, next.values[j])
			j++
		default:
			i++
			j++
		}
	}
	c.Removed = append(c.Removed, old.values[i:]...)
	c.Added = append(c.Added, next.values[j:]...)
	return c
}
