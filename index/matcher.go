package index

import (
	"fmt"
)

// MatcherKind enumerates the ways a Matcher selects entities.
type MatcherKind int

const (
	ExactMatch MatcherKind = iota
	RangeMatch
	InequalityMatch
	UUIDMatch
)

func (k MatcherKind) String() string {
	switch k {
	case ExactMatch:
		return "exact"
	case RangeMatch:
		return "range"
	case InequalityMatch:
		return "inequality"
	case UUIDMatch:
		return "uuid"
	default:
		return fmt.Sprintf("matcher(%d)", int(k))
	}
}

// Operator is the comparison of an inequality matcher.
type Operator int

const (
	Less Operator = iota
	LessOrEqual
	Greater
	GreaterOrEqual
)

func (o Operator) String() string {
	switch o {
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// ParseOperator parses <, <=, > and >=.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "<":
		return Less, nil
	case "<=":
		return LessOrEqual, nil
	case ">":
		return Greater, nil
	case ">=":
		return GreaterOrEqual, nil
	default:
		return 0, fmt.Errorf("unknown inequality operator %q", s)
	}
}

// Matcher is a reusable, stateless predicate over the values of one key
// definition. Create matchers with Exact, Range, Any, Inequality or UUID.
type Matcher struct {
	Kind       MatcherKind
	Definition KeyDefinition

	// Exact, Inequality and UUID matchers
	Value  Value
	Negate bool
	Op     Operator

	// Range matchers
	Low, High Bound
}

// Exact matches entities holding a value equal to v. A negated matcher
// matches entities holding at least one value other than v; entities with
// no value at all under the definition never match.
func Exact(def KeyDefinition, v Value, negate bool) Matcher {
	return Matcher{Kind: ExactMatch, Definition: def, Value: v, Negate: negate}
}

// Range matches values between lo and hi. Bounded ends must be of
// comparable kinds.
func Range(def KeyDefinition, lo, hi Bound) (Matcher, error) {
	if err := checkBounds(lo, hi); err != nil {
		return Matcher{}, fmt.Errorf("range on %s: %w", def, err)
	}
	return Matcher{Kind: RangeMatch, Definition: def, Low: lo, High: hi}, nil
}

// Any matches every entity with at least one value under def.
func Any(def KeyDefinition) Matcher {
	return Matcher{Kind: RangeMatch, Definition: def, Low: Unbounded(), High: Unbounded()}
}

// Inequality matches values that compare to v as op says. Only values of a
// kind comparable with v are considered.
func Inequality(def KeyDefinition, op Operator, v Value) (Matcher, error) {
	if op < Less || op > GreaterOrEqual {
		return Matcher{}, fmt.Errorf("inequality on %s: unknown operator %s", def, op)
	}
	return Matcher{Kind: InequalityMatch, Definition: def, Op: op, Value: v}, nil
}

// UUID matches the single entity whose identity key holds id.
func UUID(id Value) Matcher {
	return Matcher{Kind: UUIDMatch, Definition: UniqueUUID, Value: id}
}

// bounds translates range and inequality matchers into a range scan.
func (m Matcher) bounds() (lo, hi Bound) {
	switch m.Kind {
	case RangeMatch:
		return m.Low, m.High
	case InequalityMatch:
		switch m.Op {
		case Less:
			return Unbounded(), Exclusive(m.Value)
		case LessOrEqual:
			return Unbounded(), Inclusive(m.Value)
		case Greater:
			return Exclusive(m.Value), Unbounded()
		default:
			return Inclusive(m.Value), Unbounded()
		}
	default:
		return Inclusive(m.Value), Inclusive(m.Value)
	}
}

// walk visits the buckets of mm selected by the matcher, in increasing order
// or, if reverse is set, in decreasing order.
func (m Matcher) walk(mm bucketWalker, reverse bool, fn func(*bucket) bool) {
	switch m.Kind {
	case ExactMatch, UUIDMatch:
		if !m.Negate {
			mm.exact(m.Value, fn)
			return
		}
		mm.all(reverse, func(b *bucket) bool {
			if b.key.order(m.Value) == 0 {
				return true
			}
			return fn(b)
		})
	case RangeMatch, InequalityMatch:
		lo, hi := m.bounds()
		if reverse {
			mm.descend(lo, hi, fn)
		} else {
			mm.ascend(lo, hi, fn)
		}
	}
}

// Matches reports whether a key satisfies the matcher. A key of another
// definition never matches. Range and inequality matchers fail with a
// *TypeMismatchError when none of the key's values is comparable with the
// target.
func (m Matcher) Matches(k Key) (bool, error) {
	if k.def.id != m.Definition.id {
		return false, nil
	}
	switch m.Kind {
	case ExactMatch, UUIDMatch:
		for _, v := range k.values {
			if (v.order(m.Value) == 0) != m.Negate {
				return true, nil
			}
		}
		return false, nil
	case RangeMatch, InequalityMatch:
		lo, hi := m.bounds()
		typed := len(k.values) == 0 || (lo.Unbounded && hi.Unbounded)
		for _, v := range k.values {
			if !inRank(v, lo, hi) {
				continue
			}
			typed = true
			if within(v, lo, hi) {
				return true, nil
			}
		}
		if !typed {
			target := lo.Value
			if lo.Unbounded {
				target = hi.Value
			}
			return false, &TypeMismatchError{Want: target.kind, Got: k.values[0].kind}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown matcher kind %s", m.Kind)
	}
}

func inRank(v Value, lo, hi Bound) bool {
	switch {
	case !lo.Unbounded:
		return v.Comparable(lo.Value)
	case !hi.Unbounded:
		return v.Comparable(hi.Value)
	default:
		return true
	}
}

func within(v Value, lo, hi Bound) bool {
	if !lo.Unbounded {
		c := v.order(lo.Value)
		if c < 0 || (c == 0 && !lo.Inclusive) {
			return false
		}
	}
	if !hi.Unbounded {
		c := v.order(hi.Value)
		if c > 0 || (c == 0 && !hi.Inclusive) {
			return false
		}
	}
	return true
}

func (m Matcher) String() string {
	switch m.Kind {
	case ExactMatch, UUIDMatch:
		op := "=="
		if m.Negate {
			op = "!="
		}
		return fmt.Sprintf("%s %s %s", m.Definition, op, m.Value)
	case InequalityMatch:
		return fmt.Sprintf("%s %s %s", m.Definition, m.Op, m.Value)
	default:
		return fmt.Sprintf("%s in %s", m.Definition, rangeString(m.Low, m.High))
	}
}

func rangeString(lo, hi Bound) string {
	l, h := "(-inf", "+inf)"
	if !lo.Unbounded {
		l = "(" + lo.Value.String()
		if lo.Inclusive {
			l = "[" + lo.Value.String()
		}
	}
	if !hi.Unbounded {
		h = hi.Value.String() + ")"
		if hi.Inclusive {
			h = hi.Value.String() + "]"
		}
	}
	return l + ", " + h
}
