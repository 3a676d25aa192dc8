package dtanalysis

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// IssueKind classifies an analysis finding.
type IssueKind int

const (
	// Redundant rows have the same conditions and the same actions.
	Redundant IssueKind = iota + 1
	// Conflicting rows have the same conditions but set an action column
	// to different values.
	Conflicting
)

func (k IssueKind) String() string {
	switch k {
	case Redundant:
		return "redundant"
	case Conflicting:
		return "conflicting"
	default:
		return fmt.Sprintf("issue(%d)", int(k))
	}
}

// Issue is a finding about a pair of rows.
type Issue struct {
	Kind IssueKind
	// Rows are the row numbers involved, lower first.
	Rows [2]int
	// Columns are the headers of the action columns that conflict.
	Columns []string
}

func (i Issue) String() string {
	if i.Kind == Conflicting {
		return fmt.Sprintf("rows %d and %d are conflicting on %s", i.Rows[0], i.Rows[1], strings.Join(i.Columns, ", "))
	}
	return fmt.Sprintf("rows %d and %d are %s", i.Rows[0], i.Rows[1], i.Kind)
}

// Report is the result of checking a table.
type Report []Issue

// String renders the report as a table.
func (r Report) String() string {
	tw := table.NewWriter()
	tw.SetTitle("ANALYSIS")
	tw.AppendHeader(table.Row{"Issue", "Row", "Row", "Columns"})
	for _, i := range r {
		tw.AppendRow(table.Row{i.Kind, i.Rows[0], i.Rows[1], strings.Join(i.Columns, ", ")})
	}
	tw.AppendFooter(table.Row{"Issues", len(r)})
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

// Check looks for pairs of rows with identical conditions. Such a pair is
// redundant when every action column holds the same values, and
// conflicting when some action column holds different values in both rows.
// Rows without any condition value are not checked.
func (c *RuleInspectorCache) Check() Report {
	var conds, actions []Column
	for _, col := range c.columns {
		switch col.Role {
		case Condition:
			conds = append(conds, col)
		case Action:
			actions = append(actions, col)
		}
	}

	var report Report
	for _, ri := range c.rows {
		if len(ri.Conditions()) == 0 {
			continue
		}
		candidates := c.sameConditionCandidates(ri, conds)
		it := candidates.Iterator()
		for it.HasNext() {
			other := c.rows[int(it.Next())]
			if other.RowIndex() <= ri.RowIndex() || !sameKeys(ri, other, conds) {
				continue
			}
			if issue, ok := compareActions(ri, other, actions); ok {
				report = append(report, issue)
			}
		}
	}
	c.cfg.logger.Debug("table checked", slog.Int("count", len(report)))
	return report
}

// sameConditionCandidates returns the rows holding, under every condition
// column, at least the values ri holds there.
func (c *RuleInspectorCache) sameConditionCandidates(ri *RuleInspector, conds []Column) *roaring.Bitmap {
	var acc *roaring.Bitmap
	for _, col := range conds {
		k, ok := ri.Key(col.UUID)
		if !ok {
			continue
		}
		for _, v := range k.Values() {
			rows := roaring.New()
			for _, o := range c.index.SelectEqual(k.Definition(), v) {
				rows.Add(uint32(o.RowIndex()))
			}
			if acc == nil {
				acc = rows
			} else {
				acc.And(rows)
			}
			if acc.IsEmpty() {
				return acc
			}
		}
	}
	if acc == nil {
		return roaring.New()
	}
	return acc
}

func sameKeys(a, b *RuleInspector, cols []Column) bool {
	for _, col := range cols {
		ka, oka := a.Key(col.UUID)
		kb, okb := b.Key(col.UUID)
		if oka != okb || (oka && !ka.Equal(kb)) {
			return false
		}
	}
	return true
}

func compareActions(a, b *RuleInspector, actions []Column) (Issue, bool) {
	issue := Issue{Kind: Redundant, Rows: [2]int{a.RowIndex(), b.RowIndex()}}
	same := true
	for _, col := range actions {
		ka, oka := a.Key(col.UUID)
		kb, okb := b.Key(col.UUID)
		switch {
		case oka && okb && !ka.Equal(kb):
			issue.Kind = Conflicting
			issue.Columns = append(issue.Columns, col.Header)
		case oka != okb:
			same = false
		}
	}
	if issue.Kind == Conflicting {
		return issue, true
	}
	return issue, same
}
