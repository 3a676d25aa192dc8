package index

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar type wrapped by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Time
	EnumKind
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Time:
		return "time"
	case EnumKind:
		return "enum"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// rank orders kinds inside an index. Int and Float share a rank so that
// numbers of both kinds sit in one contiguous, numerically ordered region.
func (k Kind) rank() int {
	switch k {
	case Float:
		return int(Int)
	default:
		return int(k)
	}
}

// Enum is an enumeration code. Enums compare by their ordinal, not their name.
type Enum struct {
	Name    string
	Ordinal int
}

// Value wraps one comparable cell datum. The zero Value is the null value.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	t    time.Time

	// edge is -1 or 1 for search pivots sitting below or above every value
	// of their kind's rank. Stored values always have edge 0.
	edge int8
}

// NullValue returns the null value. It sorts before every other value.
func NullValue() Value { return Value{} }

// NewValue wraps a Go scalar. Compound values (slices, maps, structs other than
// time.Time and Enum) must be decomposed by the caller; they are rejected with
// ErrUnsupportedType.
func NewValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		if x {
			return Value{kind: Bool, i: 1}, nil
		}
		return Value{kind: Bool}, nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint32:
		return IntValue(int64(x)), nil
	case uint64:
		return uintValue(x)
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case string:
		return StringValue(x), nil
	case time.Time:
		return Value{kind: Time, t: x}, nil
	case Enum:
		return Value{kind: EnumKind, i: int64(x.Ordinal), s: x.Name}, nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// MustValue is like NewValue but panics on error. Intended for tests and
// static tables of values.
func MustValue(v any) Value {
	val, err := NewValue(v)
	if err != nil {
		panic(err)
	}
	return val
}

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: Int, i: i} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

func uintValue(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: uint64 %d overflows int64", ErrUnsupportedType, u)
	}
	return IntValue(int64(u)), nil
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) {
		return Value{}, fmt.Errorf("%w: NaN has no ordering", ErrUnsupportedType)
	}
	return Value{kind: Float, f: f}, nil
}

// Kind returns the kind of the wrapped scalar.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == Null }

// Interface returns the wrapped scalar as a Go value.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.i == 1
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Time:
		return v.t
	case EnumKind:
		return Enum{Name: v.s, Ordinal: int(v.i)}
	default:
		return nil
	}
}

// Comparable reports whether v and o can be ordered against each other.
func (v Value) Comparable(o Value) bool {
	return v.kind.rank() == o.kind.rank()
}

// Compare orders v against o. Values of incomparable kinds yield a
// *TypeMismatchError; Int and Float compare numerically.
func (v Value) Compare(o Value) (int, error) {
	if !v.Comparable(o) {
		return 0, &TypeMismatchError{Want: v.kind, Got: o.kind}
	}
	return v.compareSameRank(o), nil
}

// Equal reports whether v and o hold equal scalars. Values of incomparable
// kinds are never equal.
func (v Value) Equal(o Value) bool {
	c, err := v.Compare(o)
	return err == nil && c == 0
}

// order is the total order used inside the index: kind rank first, then the
// natural order of the scalar.
func (v Value) order(o Value) int {
	if c := cmp.Compare(v.kind.rank(), o.kind.rank()); c != 0 {
		return c
	}
	if v.edge != 0 || o.edge != 0 {
		return cmp.Compare(v.edge, o.edge)
	}
	return v.compareSameRank(o)
}

func (v Value) less(o Value) bool { return v.order(o) < 0 }

// lowest and highest return pivots below and above every value of k's rank.
func lowest(k Kind) Value  { return Value{kind: k, edge: -1} }
func highest(k Kind) Value { return Value{kind: k, edge: 1} }

func (v Value) compareSameRank(o Value) int {
	switch v.kind {
	case Null:
		return 0
	case Bool, EnumKind:
		return cmp.Compare(v.i, o.i)
	case Int:
		if o.kind == Float {
			return compareIntFloat(v.i, o.f)
		}
		return cmp.Compare(v.i, o.i)
	case Float:
		if o.kind == Int {
			return -compareIntFloat(o.i, v.f)
		}
		return cmp.Compare(v.f, o.f)
	case String:
		return strings.Compare(v.s, o.s)
	case Time:
		return v.t.Compare(o.t)
	default:
		return 0
	}
}

// compareIntFloat compares i and f exactly. Converting i to float64 rounds
// above 2^53 and would make the order intransitive. f is never NaN.
func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= math.MaxInt64:
		return -1
	case f < math.MinInt64:
		return 1
	}
	t := math.Trunc(f)
	if c := cmp.Compare(i, int64(t)); c != 0 {
		return c
	}
	return cmp.Compare(0, f-t)
}

func (v Value) String() string {
	switch v.kind {
	case Null:
		return "<null>"
	case Bool:
		return strconv.FormatBool(v.i == 1)
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	case Time:
		return v.t.Format(time.RFC3339)
	case EnumKind:
		return v.s
	default:
		return "?"
	}
}
