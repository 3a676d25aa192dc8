package index

import (
	"errors"
	"fmt"
)

// Select is a query: a matcher bound to the MultiMap it runs against. It
// holds no results; every call evaluates the matcher against the map as it
// is at that moment.
type Select[E comparable] struct {
	source  func() *MultiMap[E]
	matcher Matcher
}

// NewSelect returns a query over mm.
func NewSelect[E comparable](mm *MultiMap[E], m Matcher) *Select[E] {
	return &Select[E]{
		source:  func() *MultiMap[E] { return mm },
		matcher: m,
	}
}

// Matcher returns the query's matcher.
func (s *Select[E]) Matcher() Matcher { return s.matcher }

// All returns the matching entities in index order. An entity matching under
// several values appears once, at its first position.
func (s *Select[E]) All() []E {
	mm := s.source()
	if mm == nil {
		return nil
	}
	return mm.collect(func(fn func(*bucket) bool) {
		s.matcher.walk(mm, false, fn)
	})
}

// Exists reports whether at least one entity matches.
func (s *Select[E]) Exists() bool {
	_, err := s.First()
	return err == nil
}

// First returns the matching entity with the smallest value, or
// ErrEmptyResult.
func (s *Select[E]) First() (E, error) {
	return s.boundary(false)
}

// Last returns the matching entity with the largest value, or
// ErrEmptyResult.
func (s *Select[E]) Last() (E, error) {
	return s.boundary(true)
}

func (s *Select[E]) boundary(reverse bool) (E, error) {
	var out E
	mm := s.source()
	if mm == nil {
		return out, fmt.Errorf("select %s: %w", s.matcher, ErrEmptyResult)
	}
	found := false
	s.matcher.walk(mm, reverse, func(b *bucket) bool {
		h := b.handles.Minimum()
		if reverse {
			h = b.handles.Maximum()
		}
		out, found = mm.arena.entity(h), true
		return false
	})
	if !found {
		return out, fmt.Errorf("select %s: %w", s.matcher, ErrEmptyResult)
	}
	return out, nil
}

// Listen identifies a subscriber to be told when the result of a query may
// have changed.
type Listen[E comparable] struct {
	id     string
	notify func([]E)
}

// NewListen returns a subscription token. fn receives the fresh result of
// the query it is paired with.
func NewListen[E comparable](id string, fn func([]E)) Listen[E] {
	return Listen[E]{id: id, notify: fn}
}

func (l Listen[E]) ID() string { return l.id }

// Notify passes matches to the subscriber.
func (l Listen[E]) Notify(matches []E) {
	if l.notify != nil {
		l.notify(matches)
	}
}

// Where pairs a query with the subscriber that wants its result kept fresh.
// It does not run anything by itself; the owner of the index re-runs the
// query after each batch of changes.
type Where[E comparable] struct {
	s *Select[E]
	l Listen[E]
}

// NewWhere pairs s and l. Both must be set.
func NewWhere[E comparable](s *Select[E], l Listen[E]) (*Where[E], error) {
	if s == nil {
		return nil, errors.New("where: select is required")
	}
	if l.id == "" {
		return nil, errors.New("where: listen id is required")
	}
	return &Where[E]{s: s, l: l}, nil
}

func (w *Where[E]) Select() *Select[E] { return w.s }
func (w *Where[E]) Listen() Listen[E]  { return w.l }
