package dtanalysis_test

import (
	"flag"
	"testing"
	"time"

	"github.com/ezachrisen/dtanalysis"
)

// Set flag with go test -run=MyTest --debug=true
// to print the cache and index after each step
var debugOutput bool

func init() {
	flag.BoolVar(&debugOutput, "debug", false, "Enable detailed logging for tests")
}

func debugLogf(t *testing.T, format string, args ...any) {
	t.Helper()
	if debugOutput {
		t.Logf(format, args...)
	}
}

// Columns of the approvals table
const (
	colRow = iota
	colDescription
	colAgeLow
	colAgeHigh
	colApproved
)

// approvals builds a table with two integer conditions on a person's age
// and a boolean action. Every row has the same conditions; row 4 is the
// only one that does not approve.
func approvals() *dtanalysis.Table {
	t := &dtanalysis.Table{
		Name: "approvals",
		Columns: []dtanalysis.Column{
			{UUID: "row", Header: "#", Role: dtanalysis.RowNumber},
			{UUID: "desc", Header: "Description", Role: dtanalysis.Description},
			{UUID: "age-low", Header: "Age", Role: dtanalysis.Condition, Type: dtanalysis.Int{}, FactType: "Person", Field: "age", Operator: "=="},
			{UUID: "age-high", Header: "Age", Role: dtanalysis.Condition, Type: dtanalysis.Int{}, FactType: "Person", Field: "age", Operator: "=="},
			{UUID: "approved", Header: "Approved", Role: dtanalysis.Action, Type: dtanalysis.Bool{}, FactType: "Person", Field: "approved"},
		},
	}
	for i := 0; i < 7; i++ {
		t.Data = append(t.Data, dtanalysis.Row(i+1, "description", 0, 1, i != 4))
	}
	return t
}

// recorder is an UpdateHandler that keeps every call.
type recorder struct {
	calls [][]dtanalysis.Coordinate
}

func (r *recorder) UpdateCoordinates(coords []dtanalysis.Coordinate) {
	r.calls = append(r.calls, coords)
}

func rowNumbers(ris []*dtanalysis.RuleInspector) []int {
	out := make([]int, len(ris))
	for i, ri := range ris {
		out[i] = ri.RowIndex()
	}
	return out
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
