package dtanalysis_test

import (
	"os"
	"testing"

	"github.com/ezachrisen/dtanalysis"
	"github.com/ezachrisen/dtanalysis/index"
	"github.com/matryer/is"
)

func loadDiscounts(t *testing.T) *dtanalysis.Table {
	t.Helper()
	data, err := os.ReadFile("testdata/discounts.yaml")
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := dtanalysis.ParseTable(data)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestParseTable(t *testing.T) {
	is := is.New(t)
	tbl := loadDiscounts(t)

	is.Equal("discounts", tbl.Name)
	is.Equal(6, len(tbl.Columns))
	is.Equal(5, tbl.Rows())
	is.Equal(dtanalysis.Condition, tbl.Columns[2].Role)
	is.Equal(dtanalysis.Int{}, tbl.Columns[2].Type)
	is.Equal(nil, tbl.Columns[3].Type)
	is.True(tbl.Columns[0].UUID != "") // generated
	is.True(tbl.Columns[0].UUID != tbl.Columns[1].UUID)

	oracle := dtanalysis.MapOracle{
		"Customer": {"tier": dtanalysis.Enum{Values: []string{"BRONZE", "SILVER", "GOLD"}}},
	}
	c, err := dtanalysis.NewRuleInspectorCache(tbl, nil, dtanalysis.WithOracle(oracle))
	is.NoErr(err)
	debugLogf(t, "%s\n%s\n", c, c.Index())

	seniors := c.Index().SelectEqual(dtanalysis.ColumnDefinition(tbl.Columns[2]), index.IntValue(65))
	is.Equal([]int{1, 2, 3}, rowNumbers(seniors))

	since, err := c.Index().SelectRange(dtanalysis.ColumnDefinition(tbl.Columns[4]),
		index.Unbounded(), index.Inclusive(index.MustValue(mustDate(t, "2021-06-30"))))
	is.NoErr(err)
	is.Equal([]int{0, 1}, rowNumbers(since))

	report := c.Check()
	is.Equal(1, len(report))
	is.Equal(dtanalysis.Conflicting, report[0].Kind)
	is.Equal([2]int{1, 3}, report[0].Rows)
}

func TestMarshalTableRoundTrip(t *testing.T) {
	is := is.New(t)
	tbl := loadDiscounts(t)

	out, err := dtanalysis.MarshalTable(tbl)
	is.NoErr(err)
	back, err := dtanalysis.ParseTable(out)
	is.NoErr(err)

	is.Equal(tbl.Columns, back.Columns)
	is.Equal(tbl.Rows(), back.Rows())
}

func TestParseTableErrors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":     "columns: [",
		"bad role":     "columns: [{header: x, role: output}]",
		"bad type":     "columns: [{header: x, role: condition, type: money}]",
		"short row":    "columns: [{header: x, role: condition}, {header: y, role: action}]\nrows: [[1]]",
		"duplicate id": "columns: [{uuid: a, header: x, role: condition}, {uuid: a, header: y, role: action}]",
	}
	for name, in := range cases {
		if _, err := dtanalysis.ParseTable([]byte(in)); err == nil {
			t.Errorf("case %s: expected error", name)
		}
	}
}
