package dtanalysis

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ezachrisen/dtanalysis/index"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// UpdateHandler is told which cells may have changed their analysis state
// after a batch of cell edits.
type UpdateHandler interface {
	UpdateCoordinates(coords []Coordinate)
}

// UpdateHandlerFunc adapts a function to an UpdateHandler.
type UpdateHandlerFunc func(coords []Coordinate)

// UpdateCoordinates implements UpdateHandler.
func (f UpdateHandlerFunc) UpdateCoordinates(coords []Coordinate) { f(coords) }

// RuleInspectorCache keeps one RuleInspector per row of a decision table
// and indexes them in a KeyTreeMap. The cache is updated incrementally as
// the table is edited.
//
// Row numbers follow the table: removing or inserting a row renumbers the
// rows after it.
//
// A RuleInspectorCache is not safe for concurrent use; see Session.
type RuleInspectorCache struct {
	columns    []Column
	converters []converter
	rows       []*RuleInspector
	index      *index.KeyTreeMap[*RuleInspector]
	handler    UpdateHandler
	subs       []*subscription
	cfg        config
}

type subscription struct {
	where *index.Where[*RuleInspector]
	last  []*RuleInspector
}

// NewRuleInspectorCache builds an inspector for every row of t and indexes
// them. The handler may be nil.
func NewRuleInspectorCache(t *Table, handler UpdateHandler, opts ...Option) (*RuleInspectorCache, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("building cache: %w", err)
	}
	c := &RuleInspectorCache{
		handler: handler,
		cfg:     newConfig(opts),
	}
	c.index = index.NewKeyTreeMap[*RuleInspector](c.cfg.indexOpts...)
	c.columns = slices.Clone(t.Columns)
	c.converters = c.convertersFor(c.columns)

	rows := make([]*RuleInspector, len(t.Data))
	for i := range t.Data {
		ri, err := c.inspect(t, i)
		if err != nil {
			return nil, fmt.Errorf("building cache: %w", err)
		}
		rows[i] = ri
	}
	for _, ri := range rows {
		if err := c.index.Put(ri); err != nil {
			return nil, fmt.Errorf("building cache: %w", err)
		}
	}
	c.rows = rows
	c.cfg.logger.Debug("rule inspector cache built", slog.Int("rows", len(rows)), slog.Int("columns", len(c.columns)))
	return c, nil
}

func (c *RuleInspectorCache) convertersFor(cols []Column) []converter {
	out := make([]converter, len(cols))
	for i, col := range cols {
		out[i] = converter{col: col, typ: resolveType(col, c.cfg.oracle)}
	}
	return out
}

// inspect builds an unindexed inspector for row i of t.
func (c *RuleInspectorCache) inspect(t *Table, i int) (*RuleInspector, error) {
	ri := newRuleInspector(i)
	for j, conv := range c.converters {
		k, err := conv.key(t.Data[i][j])
		if err != nil {
			return nil, &CellError{Coordinate: Coordinate{Row: i, Column: j}, Column: conv.col.Header, Err: err}
		}
		ri.set(conv.col, k)
	}
	ri.superType = ri.superTypeKey()
	return ri, nil
}

// checkColumns verifies that t has the columns the cache was built with.
func (c *RuleInspectorCache) checkColumns(t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Columns) != len(c.columns) {
		return fmt.Errorf("%w: table has %d columns, cache has %d", ErrColumnMismatch, len(t.Columns), len(c.columns))
	}
	for i := range t.Columns {
		if t.Columns[i].UUID != c.columns[i].UUID {
			return fmt.Errorf("%w: column %d is %s, cache has %s", ErrColumnMismatch, i, t.Columns[i].UUID, c.columns[i].UUID)
		}
	}
	return nil
}

type cellUpdate struct {
	ri  *RuleInspector
	col Column
	key index.Key
}

// UpdateRuleInspectors re-reads the cells at coords from t and updates the
// keys of the affected rows. Every cell is converted before anything is
// changed; if one fails, the cache is left as it was. The handler is
// called once with the distinct coordinates, in the order given.
func (c *RuleInspectorCache) UpdateRuleInspectors(coords []Coordinate, t *Table) error {
	if err := c.checkColumns(t); err != nil {
		return fmt.Errorf("updating rule inspectors: %w", err)
	}

	var distinct []Coordinate
	seen := map[Coordinate]bool{}
	for _, co := range coords {
		if !seen[co] {
			seen[co] = true
			distinct = append(distinct, co)
		}
	}

	updates := make([]cellUpdate, 0, len(distinct))
	for _, co := range distinct {
		if co.Row < 0 || co.Row >= len(c.rows) {
			return fmt.Errorf("updating rule inspectors: %w: row %d of %d", ErrCoordinateOutOfRange, co.Row, len(c.rows))
		}
		cell, err := t.Cell(co)
		if err != nil {
			return fmt.Errorf("updating rule inspectors: %w", err)
		}
		conv := c.converters[co.Column]
		k, err := conv.key(cell)
		if err != nil {
			return fmt.Errorf("updating rule inspectors: %w", &CellError{Coordinate: co, Column: conv.col.Header, Err: err})
		}
		updates = append(updates, cellUpdate{ri: c.rows[co.Row], col: conv.col, key: k})
	}

	touched := map[*RuleInspector]bool{}
	for _, u := range updates {
		if !u.col.Role.indexed() {
			continue
		}
		c.setKey(u.ri, u.col, u.key)
		touched[u.ri] = true
	}
	for ri := range touched {
		c.refreshSuperType(ri)
	}

	c.cfg.logger.Debug("rule inspectors updated", slog.Int("count", len(distinct)), slog.Any("coordinates", distinct))
	if c.handler != nil {
		c.handler.UpdateCoordinates(distinct)
	}
	c.notify()
	return nil
}

// setKey replaces the indexed key of col on ri. The key definitions used
// by the cache are updatable and ri is indexed, so the update cannot fail.
func (c *RuleInspectorCache) setKey(ri *RuleInspector, col Column, k index.Key) {
	if k.IsEmpty() {
		c.index.RemoveKey(ri, k.Definition())
		ri.set(col, k)
		return
	}
	if _, err := c.index.UpdateKey(ri, k); err != nil {
		panic(fmt.Sprintf("updating column key %s: %v", col.UUID, err))
	}
	ri.set(col, k)
}

func (c *RuleInspectorCache) refreshSuperType(ri *RuleInspector) {
	k := ri.superTypeKey()
	if _, err := c.index.UpdateKey(ri, k); err != nil {
		panic(fmt.Sprintf("updating super-type key: %v", err))
	}
	ri.superType = k
}

func (c *RuleInspectorCache) renumber(from int) {
	for i := from; i < len(c.rows); i++ {
		ri := c.rows[i]
		if ri.RowIndex() == i {
			continue
		}
		k := rowKey(i)
		if _, err := c.index.UpdateKey(ri, k); err != nil {
			panic(fmt.Sprintf("updating row key: %v", err))
		}
		ri.row = k
	}
}

// RemoveRow drops the inspector of row i. Rows after i move up by one.
func (c *RuleInspectorCache) RemoveRow(i int) error {
	if i < 0 || i >= len(c.rows) {
		return fmt.Errorf("removing row: %w: %d of %d", ErrCoordinateOutOfRange, i, len(c.rows))
	}
	c.index.Remove(c.rows[i])
	c.rows = slices.Delete(c.rows, i, i+1)
	c.renumber(i)
	c.cfg.logger.Debug("row removed", slog.Int("row", i), slog.Int("rows", len(c.rows)))
	c.notify()
	return nil
}

// InsertRow indexes row i of t, which must be a row new to the cache. Rows
// from i on move down by one.
func (c *RuleInspectorCache) InsertRow(i int, t *Table) error {
	if err := c.checkColumns(t); err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}
	if i < 0 || i > len(c.rows) || i >= len(t.Data) {
		return fmt.Errorf("inserting row: %w: %d", ErrCoordinateOutOfRange, i)
	}
	ri, err := c.inspect(t, i)
	if err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}
	if err := c.index.Put(ri); err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}
	c.rows = slices.Insert(c.rows, i, ri)
	c.renumber(i + 1)
	c.cfg.logger.Debug("row inserted", slog.Int("row", i), slog.Int("rows", len(c.rows)))
	c.notify()
	return nil
}

// DeleteColumns removes count columns starting at start. Every inspector
// loses its keys for those columns; no rows are removed.
func (c *RuleInspectorCache) DeleteColumns(start, count int) error {
	if err := checkSpan(start, count, len(c.columns)); err != nil {
		return fmt.Errorf("deleting columns: %w", err)
	}
	removed := c.columns[start : start+count]
	for _, ri := range c.rows {
		changed := false
		for _, col := range removed {
			if c.index.RemoveKey(ri, ColumnDefinition(col)) {
				changed = true
			}
			ri.set(col, index.NewKey(ColumnDefinition(col)))
		}
		if changed {
			c.refreshSuperType(ri)
		}
	}
	c.columns = slices.Delete(c.columns, start, start+count)
	c.converters = slices.Delete(c.converters, start, start+count)
	c.cfg.logger.Debug("columns deleted", slog.Int("column", start), slog.Int("count", count))
	c.notify()
	return nil
}

// InsertColumns indexes count new columns of t starting at start. Apart
// from those, t must have the cache's columns in the same order.
func (c *RuleInspectorCache) InsertColumns(start, count int, t *Table) error {
	if start < 0 || count < 0 || start > len(c.columns) {
		return fmt.Errorf("inserting columns: %w: %d", ErrCoordinateOutOfRange, start)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("inserting columns: %w", err)
	}
	if len(t.Columns) != len(c.columns)+count || len(t.Data) != len(c.rows) {
		return fmt.Errorf("inserting columns: %w: table is %dx%d, want %dx%d",
			ErrColumnMismatch, len(t.Data), len(t.Columns), len(c.rows), len(c.columns)+count)
	}
	cols := slices.Clone(t.Columns[start : start+count])
	next := slices.Insert(slices.Clone(c.columns), start, cols...)
	for i := range next {
		if next[i].UUID != t.Columns[i].UUID {
			return fmt.Errorf("inserting columns: %w: column %d is %s", ErrColumnMismatch, i, t.Columns[i].UUID)
		}
	}
	for _, col := range cols {
		if slices.ContainsFunc(c.columns, func(o Column) bool { return o.UUID == col.UUID }) {
			return fmt.Errorf("inserting columns: duplicate column UUID %s", col.UUID)
		}
	}

	convs := c.convertersFor(cols)
	keys := make([][]index.Key, len(c.rows))
	for i := range c.rows {
		keys[i] = make([]index.Key, count)
		for j, conv := range convs {
			co := Coordinate{Row: i, Column: start + j}
			k, err := conv.key(t.Data[i][start+j])
			if err != nil {
				return fmt.Errorf("inserting columns: %w", &CellError{Coordinate: co, Column: conv.col.Header, Err: err})
			}
			keys[i][j] = k
		}
	}

	for i, ri := range c.rows {
		changed := false
		for j, col := range cols {
			if k := keys[i][j]; !k.IsEmpty() {
				c.setKey(ri, col, k)
				changed = true
			}
		}
		if changed {
			c.refreshSuperType(ri)
		}
	}
	c.columns = next
	c.converters = slices.Insert(c.converters, start, convs...)
	c.cfg.logger.Debug("columns inserted", slog.Int("column", start), slog.Int("count", count))
	c.notify()
	return nil
}

// All returns the tracked inspectors in row order.
func (c *RuleInspectorCache) All() []*RuleInspector {
	return slices.Clone(c.rows)
}

// Row returns the inspector of row i.
func (c *RuleInspectorCache) Row(i int) (*RuleInspector, error) {
	if i < 0 || i >= len(c.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrCoordinateOutOfRange, i, len(c.rows))
	}
	return c.rows[i], nil
}

// Columns returns the columns the cache currently indexes.
func (c *RuleInspectorCache) Columns() []Column {
	return slices.Clone(c.columns)
}

// Index returns the underlying index. It must not be modified.
func (c *RuleInspectorCache) Index() *index.KeyTreeMap[*RuleInspector] {
	return c.index
}

// Select returns a query over the inspectors.
func (c *RuleInspectorCache) Select(m index.Matcher) *index.Select[*RuleInspector] {
	return c.index.Select(m)
}

// Subscribe registers w, which must come from index.NewWhere. Its listener
// is notified with the current matches right away and again after every
// mutation that changes them. A subscription with the same listen ID is
// replaced.
func (c *RuleInspectorCache) Subscribe(w *index.Where[*RuleInspector]) error {
	if w == nil || w.Select() == nil {
		return ErrInvalidSubscription
	}
	c.Unsubscribe(w.Listen().ID())
	s := &subscription{where: w, last: w.Select().All()}
	c.subs = append(c.subs, s)
	w.Listen().Notify(s.last)
	return nil
}

// Unsubscribe removes the subscription with the listen ID. It returns false
// if there was none.
func (c *RuleInspectorCache) Unsubscribe(id string) bool {
	i := slices.IndexFunc(c.subs, func(s *subscription) bool { return s.where.Listen().ID() == id })
	if i < 0 {
		return false
	}
	c.subs = slices.Delete(c.subs, i, i+1)
	return true
}

// notify re-runs the subscribed queries.
func (c *RuleInspectorCache) notify() {
	for _, s := range c.subs {
		got := s.where.Select().All()
		if slices.Equal(got, s.last) {
			continue
		}
		s.last = got
		c.cfg.logger.Debug("subscription notified", slog.String("listen", s.where.Listen().ID()), slog.Int("count", len(got)))
		s.where.Listen().Notify(got)
	}
}

// String renders the cache as a table with one line per row.
func (c *RuleInspectorCache) String() string {
	tw := table.NewWriter()
	tw.SetTitle("RULE INSPECTOR CACHE")
	header := table.Row{"Row"}
	for _, col := range c.columns {
		if col.Role.indexed() {
			header = append(header, fmt.Sprintf("%s\n%s", col.Header, col.Role))
		}
	}
	header = append(header, "Super Type")
	tw.AppendHeader(header)
	for _, ri := range c.rows {
		row := table.Row{ri.RowIndex()}
		for _, col := range c.columns {
			if !col.Role.indexed() {
				continue
			}
			k, ok := ri.Key(col.UUID)
			if !ok {
				row = append(row, "")
				continue
			}
			vals := make([]string, 0, k.Len())
			for _, v := range k.Values() {
				vals = append(vals, v.String())
			}
			row = append(row, strings.Join(vals, ", "))
		}
		st := make([]string, 0, ri.superType.Len())
		for _, v := range ri.superType.Values() {
			st = append(st, v.String())
		}
		row = append(row, strings.Join(st, " "))
		tw.AppendRow(row)
	}
	tw.AppendFooter(table.Row{"Rows", len(c.rows)})
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

// CellKey converts cell the way a cell of col is converted for the index.
func (c *RuleInspectorCache) CellKey(col Column, cell any) (index.Key, error) {
	conv := converter{col: col, typ: resolveType(col, c.cfg.oracle)}
	return conv.key(cell)
}
