package index_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ezachrisen/dtanalysis/index"
	"github.com/matryer/is"
)

func TestNewValue(t *testing.T) {
	is := is.New(t)
	now := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	cases := []struct {
		in   any
		kind index.Kind
		str  string
	}{
		{nil, index.Null, "<null>"},
		{true, index.Bool, "true"},
		{int8(-3), index.Int, "-3"},
		{uint32(42), index.Int, "42"},
		{1.5, index.Float, "1.5"},
		{"abc", index.String, "abc"},
		{now, index.Time, "2021-03-04T05:06:07Z"},
		{index.Enum{Name: "GOLD", Ordinal: 2}, index.EnumKind, "GOLD"},
	}
	for _, c := range cases {
		v, err := index.NewValue(c.in)
		is.NoErr(err)
		is.Equal(v.Kind(), c.kind)
		is.Equal(v.String(), c.str)
	}
}

func TestNewValueRejectsCompoundTypes(t *testing.T) {
	is := is.New(t)
	for _, in := range []any{[]int{1}, map[string]int{}, struct{}{}} {
		_, err := index.NewValue(in)
		is.True(errors.Is(err, index.ErrUnsupportedType))
	}
}

func TestCompare(t *testing.T) {
	is := is.New(t)
	c, err := index.MustValue(1).Compare(index.MustValue(2))
	is.NoErr(err)
	is.Equal(c, -1)

	c, err = index.MustValue(2).Compare(index.MustValue(1.5))
	is.NoErr(err)
	is.Equal(c, 1)

	is.True(index.MustValue(3).Equal(index.MustValue(3.0)))
	is.True(!index.MustValue("3").Equal(index.MustValue(3)))

	_, err = index.MustValue("a").Compare(index.MustValue(true))
	is.True(errors.Is(err, index.ErrTypeMismatch))
	var tm *index.TypeMismatchError
	is.True(errors.As(err, &tm))
	is.Equal(tm.Want, index.String)
	is.Equal(tm.Got, index.Bool)
}

// Ints above 2^53 have no exact float64; the order must still be
// transitive across the two kinds.
func TestCompareLargeIntsWithFloats(t *testing.T) {
	is := is.New(t)
	const p53 = int64(1) << 53
	a, b, f := index.IntValue(p53), index.IntValue(p53+1), index.MustValue(float64(p53))

	cmp := func(x, y index.Value) int {
		c, err := x.Compare(y)
		is.NoErr(err)
		return c
	}
	is.Equal(cmp(a, b), -1)
	is.Equal(cmp(a, f), 0)
	is.Equal(cmp(b, f), 1)
	is.Equal(cmp(f, b), -1)

	is.Equal(cmp(index.IntValue(2), index.MustValue(2.5)), -1)
	is.Equal(cmp(index.IntValue(-2), index.MustValue(-2.5)), 1)
	is.Equal(cmp(index.IntValue(-3), index.MustValue(-2.5)), -1)
	is.Equal(cmp(index.IntValue(1<<62), index.MustValue(1e19)), -1)
	is.Equal(cmp(index.IntValue(-1<<62), index.MustValue(-1e19)), 1)

	def := index.NewKeyDefinition("x")
	k := index.NewKey(def, f, a, b)
	is.Equal(k.Len(), 2) // a and f are the same number
	is.True(k.Has(a))
	is.True(k.Has(b))
	is.True(k.Has(f))

	m := index.NewMultiMap[string]()
	m.Put(a, "a")
	m.Put(b, "b")
	m.Put(f, "f")
	is.Equal(m.Get(a), []string{"a", "f"})
	is.Equal(m.Get(b), []string{"b"})
}

func TestKeyOf(t *testing.T) {
	is := is.New(t)
	def := index.NewKeyDefinition("age")

	k, err := index.KeyOf(def, 3, 1, 3, 2)
	is.NoErr(err)
	is.Equal(k.Len(), 3)
	is.Equal(k.String(), "age=[1, 2, 3]")
	is.True(k.Has(index.MustValue(2)))

	// A value that cannot be wrapped fails the key instead of being dropped.
	_, err = index.KeyOf(def, 1, []string{"x"})
	is.True(errors.Is(err, index.ErrUnsupportedType))

	_, err = index.NewKey(def).SingleValue()
	is.True(errors.Is(err, index.ErrEmptyResult))
}

func TestDelta(t *testing.T) {
	is := is.New(t)
	def := index.NewKeyDefinition("v", index.Updatable())
	old := index.NewKey(def, index.MustValue(1), index.MustValue(2), index.MustValue(3))
	next := index.NewKey(def, index.MustValue(2), index.MustValue(3), index.MustValue(4))

	c := index.Delta(old, next)
	is.Equal(c.Removed, []index.Value{index.MustValue(1)})
	is.Equal(c.Added, []index.Value{index.MustValue(4)})

	is.True(index.Delta(old, old).IsEmpty())
}
