package dtanalysis

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ezachrisen/dtanalysis/index"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	// RowIndexDefinition indexes inspectors by their current row number.
	RowIndexDefinition = index.NewKeyDefinition("rowIndex", index.Updatable())

	// SuperTypeDefinition indexes inspectors by the roles of the columns
	// in which their row has values.
	SuperTypeDefinition = index.NewKeyDefinition("superType", index.Updatable())
)

// ColumnDefinition returns the key definition the cells of col are indexed
// under. Column keys are updatable.
func ColumnDefinition(col Column) index.KeyDefinition {
	return index.NewKeyDefinition(col.UUID, index.Updatable())
}

// RuleInspector is the indexed view of one decision table row. Its keys
// are a unique id, the row number, the super-type and one key per column
// with a value.
type RuleInspector struct {
	id        index.Key
	row       index.Key
	superType index.Key
	columns   map[string]index.Key
	roles     map[string]Role
}

func newRuleInspector(row int) *RuleInspector {
	return &RuleInspector{
		id:        index.NewUUIDKey(),
		row:       rowKey(row),
		superType: index.NewKey(SuperTypeDefinition),
		columns:   map[string]index.Key{},
		roles:     map[string]Role{},
	}
}

func rowKey(row int) index.Key {
	return index.NewKey(RowIndexDefinition, index.IntValue(int64(row)))
}

// Keys implements index.Entity.
func (r *RuleInspector) Keys() []index.Key {
	keys := make([]index.Key, 0, len(r.columns)+3)
	keys = append(keys, r.id, r.row, r.superType)
	for _, id := range slices.Sorted(maps.Keys(r.columns)) {
		keys = append(keys, r.columns[id])
	}
	return keys
}

// ID returns the inspector's unique id key.
func (r *RuleInspector) ID() index.Key { return r.id }

// RowIndex is the row the inspector currently describes.
func (r *RuleInspector) RowIndex() int {
	v, err := r.row.SingleValue()
	if err != nil {
		return -1
	}
	return int(v.Interface().(int64))
}

// Key returns the key of the column with the UUID. ok is false when the
// row has no value in the column.
func (r *RuleInspector) Key(columnUUID string) (index.Key, bool) {
	k, ok := r.columns[columnUUID]
	return k, ok
}

// SuperType returns the roles of the columns in which the row has values.
func (r *RuleInspector) SuperType() index.Key { return r.superType }

// Conditions returns the keys of the condition columns, ordered by column UUID.
func (r *RuleInspector) Conditions() []index.Key { return r.keysOf(Condition) }

// Actions returns the keys of the action columns, ordered by column UUID.
func (r *RuleInspector) Actions() []index.Key { return r.keysOf(Action) }

// Attributes returns the keys of the attribute columns, ordered by column UUID.
func (r *RuleInspector) Attributes() []index.Key { return r.keysOf(Attribute) }

func (r *RuleInspector) keysOf(role Role) []index.Key {
	var out []index.Key
	for _, id := range slices.Sorted(maps.Keys(r.columns)) {
		if r.roles[id] == role {
			out = append(out, r.columns[id])
		}
	}
	return out
}

// AtLeastOneActionHasAValue reports whether any action column of the row
// holds a value.
func (r *RuleInspector) AtLeastOneActionHasAValue() bool {
	for id, k := range r.columns {
		if r.roles[id] == Action && !k.IsEmpty() {
			return true
		}
	}
	return false
}

// set records k as the key of the column. An empty key removes the column.
func (r *RuleInspector) set(col Column, k index.Key) {
	if k.IsEmpty() {
		delete(r.columns, col.UUID)
		delete(r.roles, col.UUID)
		return
	}
	r.columns[col.UUID] = k
	r.roles[col.UUID] = col.Role
}

// superTypeKey derives the super-type key from the columns with values.
func (r *RuleInspector) superTypeKey() index.Key {
	var vals []index.Value
	for _, role := range r.roles {
		vals = append(vals, index.StringValue(role.String()))
	}
	return index.NewKey(SuperTypeDefinition, vals...)
}

func (r *RuleInspector) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("RULE INSPECTOR: ROW %d", r.RowIndex()))
	tw.AppendHeader(table.Row{"Definition", "Role", "Values"})
	for _, k := range r.Keys() {
		role := ""
		if ro, ok := r.roles[k.Definition().ID()]; ok {
			role = ro.String()
		}
		vals := make([]string, 0, k.Len())
		for _, v := range k.Values() {
			vals = append(vals, v.String())
		}
		tw.AppendRow(table.Row{k.Definition().ID(), role, strings.Join(vals, ", ")})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
