package dtanalysis_test

import (
	"fmt"

	"github.com/ezachrisen/dtanalysis"
	"github.com/ezachrisen/dtanalysis/index"
)

// Example showing how to index a decision table and keep the index up to
// date as the table is edited
func Example() {

	// Step 1: Describe the table
	table := &dtanalysis.Table{
		Name: "shipping",
		Columns: []dtanalysis.Column{
			{UUID: "n", Header: "#", Role: dtanalysis.RowNumber},
			{UUID: "weight", Header: "Weight", Role: dtanalysis.Condition, Type: dtanalysis.Int{}, Operator: ">="},
			{UUID: "zone", Header: "Zone", Role: dtanalysis.Condition, Type: dtanalysis.String{}},
			{UUID: "fee", Header: "Fee", Role: dtanalysis.Action, Type: dtanalysis.Float{}},
		},
		Data: [][]any{
			{1, 0, "EU", 4.5},
			{2, 10, "EU", 9.0},
			{3, 10, "US", 12.0},
			{4, 10, "EU", 9.5},
		},
	}

	// Step 2: Build the cache, with a handler that is told which cells changed
	handler := dtanalysis.UpdateHandlerFunc(func(coords []dtanalysis.Coordinate) {
		fmt.Println("changed:", coords)
	})
	cache, err := dtanalysis.NewRuleInspectorCache(table, handler)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Step 3: Query the index
	weight := dtanalysis.ColumnDefinition(table.Columns[1])
	heavy, err := index.Inequality(weight, index.GreaterOrEqual, index.IntValue(5))
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, ri := range cache.Select(heavy).All() {
		fmt.Println("heavy parcel rule in row", ri.RowIndex())
	}

	// Step 4: Check the table
	for _, issue := range cache.Check() {
		fmt.Println(issue)
	}

	// Step 5: Edit a cell and tell the cache
	table.Data[3][2] = "US"
	if err := cache.UpdateRuleInspectors([]dtanalysis.Coordinate{{Row: 3, Column: 2}}, table); err != nil {
		fmt.Println(err)
		return
	}
	for _, issue := range cache.Check() {
		fmt.Println(issue)
	}

	// Output:
	// heavy parcel rule in row 1
	// heavy parcel rule in row 2
	// heavy parcel rule in row 3
	// rows 1 and 3 are conflicting on Fee
	// changed: [(3,2)]
	// rows 2 and 3 are conflicting on Fee
}

func ExampleParseTable() {
	table, err := dtanalysis.ParseTable([]byte(`
name: greetings
columns:
  - {uuid: lang, header: Language, role: condition, type: "enum(en,fr,de)"}
  - {uuid: text, header: Greeting, role: action, type: string}
rows:
  - [en, hello]
  - [de, hallo]
  - [fr, bonjour]
`))
	if err != nil {
		fmt.Println(err)
		return
	}
	cache, err := dtanalysis.NewRuleInspectorCache(table, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	last, err := cache.Index().Last(dtanalysis.ColumnDefinition(table.Columns[0]))
	if err != nil {
		fmt.Println(err)
		return
	}
	greeting, _ := last.Key("text")
	fmt.Println(greeting.Values())
	// Output: [hallo]
}
