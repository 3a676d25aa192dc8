package dtanalysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Saver persists a table snapshot.
type Saver interface {
	Save(ctx context.Context, t *Table) error
}

// SaverFunc adapts a function to a Saver.
type SaverFunc func(ctx context.Context, t *Table) error

// Save implements Saver.
func (f SaverFunc) Save(ctx context.Context, t *Table) error { return f(ctx, t) }

// CellChange is a new value for one cell.
type CellChange struct {
	Coordinate
	Value any
}

// Session is one editing session of a decision table. It owns a copy of
// the table and the RuleInspectorCache built over it, and serializes every
// edit and query through a single mutex.
type Session struct {
	mu      sync.Mutex
	table   *Table
	cache   *RuleInspectorCache
	handler UpdateHandler
	opts    []Option
	logger  *slog.Logger
	dirty   bool
	closed  bool
}

// NewSession returns a session that is not yet open. The handler and
// options are passed on to the cache built by Open.
func NewSession(handler UpdateHandler, opts ...Option) *Session {
	return &Session{
		handler: handler,
		opts:    opts,
		logger:  newConfig(opts).logger,
	}
}

// Open loads a copy of t and indexes it. Opening an open session replaces
// its table.
func (s *Session) Open(t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	table := t.Clone()
	cache, err := NewRuleInspectorCache(table, s.handler, s.opts...)
	if err != nil {
		return fmt.Errorf("opening %s: %w", t.Name, err)
	}
	s.table, s.cache, s.dirty = table, cache, false
	s.logger.Info("session opened", slog.String("table", t.Name), slog.Int("rows", table.Rows()))
	return nil
}

func (s *Session) ready() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.cache == nil {
		return ErrNotOpen
	}
	return nil
}

// CellsChanged applies the changes to the table and updates the index. If
// the index rejects a change, the table is restored and nothing changes.
func (s *Session) CellsChanged(changes ...CellChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	coords := make([]Coordinate, 0, len(changes))
	olds := make([]any, 0, len(changes))
	revert := func() {
		for i := len(olds) - 1; i >= 0; i-- {
			s.table.Data[coords[i].Row][coords[i].Column] = olds[i]
		}
	}
	for _, ch := range changes {
		old, err := s.table.SetCell(ch.Coordinate, ch.Value)
		if err != nil {
			revert()
			return err
		}
		coords = append(coords, ch.Coordinate)
		olds = append(olds, old)
	}
	if err := s.cache.UpdateRuleInspectors(coords, s.table); err != nil {
		revert()
		return err
	}
	s.dirty = true
	return nil
}

// RowInserted inserts row at position i.
func (s *Session) RowInserted(i int, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.table.InsertRow(i, row); err != nil {
		return err
	}
	if err := s.cache.InsertRow(i, s.table); err != nil {
		_ = s.table.RemoveRow(i)
		return err
	}
	s.dirty = true
	return nil
}

// RowRemoved deletes row i.
func (s *Session) RowRemoved(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.table.RemoveRow(i); err != nil {
		return err
	}
	if err := s.cache.RemoveRow(i); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// ColumnsRemoved deletes count columns starting at start.
func (s *Session) ColumnsRemoved(start, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.table.RemoveColumns(start, count); err != nil {
		return err
	}
	if err := s.cache.DeleteColumns(start, count); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// ColumnsInserted inserts cols at position start, with blank cells.
func (s *Session) ColumnsInserted(start int, cols ...Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.table.InsertColumns(start, cols...); err != nil {
		return err
	}
	if err := s.cache.InsertColumns(start, len(cols), s.table); err != nil {
		_ = s.table.RemoveColumns(start, len(cols))
		return err
	}
	s.dirty = true
	return nil
}

// IsDirty reports whether the table changed since it was opened or saved.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save hands a copy of the table to sv. The session stays dirty if saving
// fails.
func (s *Session) Save(ctx context.Context, sv Saver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sv.Save(ctx, s.table.Clone()); err != nil {
		return fmt.Errorf("saving %s: %w", s.table.Name, err)
	}
	s.dirty = false
	s.logger.Info("session saved", slog.String("table", s.table.Name))
	return nil
}

// Table returns a copy of the session's table.
func (s *Session) Table() (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.table.Clone(), nil
}

// Check runs the analysis over the session's table.
func (s *Session) Check() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.cache.Check(), nil
}

// Inspect calls fn with the session's cache while holding the session lock.
// fn must not keep the cache or call back into the session.
func (s *Session) Inspect(fn func(c *RuleInspectorCache) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	return fn(s.cache)
}

// Close releases the session. Unsaved changes are discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.dirty {
		s.logger.Warn("session closed with unsaved changes", slog.String("table", s.table.Name))
	}
	s.closed = true
	s.table, s.cache = nil, nil
	return nil
}
