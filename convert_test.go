package dtanalysis_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ezachrisen/dtanalysis"
	"github.com/ezachrisen/dtanalysis/index"
)

func TestCellKey(t *testing.T) {
	c := newCache(t, approvals(), nil)
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	tiers := dtanalysis.Enum{Values: []string{"LOW", "MID", "HIGH"}}

	cases := map[string]struct {
		col     dtanalysis.Column
		cell    any
		want    []index.Value
		wantErr error
	}{
		"blank": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}},
			cell: nil,
		},
		"description is not indexed": {
			col:  dtanalysis.Column{Role: dtanalysis.Description, Type: dtanalysis.String{}},
			cell: "anything",
		},
		"int": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}},
			cell: int32(7),
			want: []index.Value{index.IntValue(7)},
		},
		"int from text": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}},
			cell: " 12 ",
			want: []index.Value{index.IntValue(12)},
		},
		"blank text in an int column": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}},
			cell: "",
		},
		"float in an int column": {
			col:     dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}},
			cell:    1.5,
			wantErr: index.ErrTypeMismatch,
		},
		"int in a float column": {
			col:  dtanalysis.Column{Role: dtanalysis.Action, Type: dtanalysis.Float{}},
			cell: 2,
			want: []index.Value{index.MustValue(2.0)},
		},
		"bool": {
			col:  dtanalysis.Column{Role: dtanalysis.Action, Type: dtanalysis.Bool{}},
			cell: "true",
			want: []index.Value{index.MustValue(true)},
		},
		"bool from a number": {
			col:     dtanalysis.Column{Role: dtanalysis.Action, Type: dtanalysis.Bool{}},
			cell:    1,
			wantErr: index.ErrTypeMismatch,
		},
		"timestamp": {
			col:  dtanalysis.Column{Role: dtanalysis.Attribute, Type: dtanalysis.Timestamp{}},
			cell: "2024-02-29",
			want: []index.Value{index.MustValue(day)},
		},
		"bad timestamp": {
			col:     dtanalysis.Column{Role: dtanalysis.Attribute, Type: dtanalysis.Timestamp{}},
			cell:    "29-Feb-2024",
			wantErr: index.ErrTypeMismatch,
		},
		"string": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.String{}},
			cell: "",
			want: []index.Value{index.StringValue("")},
		},
		"enum": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: tiers},
			cell: "HIGH",
			want: []index.Value{index.MustValue(index.Enum{Name: "HIGH", Ordinal: 2})},
		},
		"enum outside the list": {
			col:     dtanalysis.Column{Role: dtanalysis.Condition, Type: tiers},
			cell:    "TOP",
			wantErr: index.ErrTypeMismatch,
		},
		"list": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}, Operator: "in"},
			cell: "3, 1,2,1",
			want: []index.Value{index.IntValue(1), index.IntValue(2), index.IntValue(3)},
		},
		"list of values": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition, Type: tiers, Operator: "not in"},
			cell: []any{"MID", "LOW"},
			want: []index.Value{index.MustValue(index.Enum{Name: "LOW", Ordinal: 0}), index.MustValue(index.Enum{Name: "MID", Ordinal: 1})},
		},
		"list with a bad item": {
			col:     dtanalysis.Column{Role: dtanalysis.Condition, Type: dtanalysis.Int{}, Operator: "in"},
			cell:    "1, two",
			wantErr: index.ErrTypeMismatch,
		},
		"any": {
			col:  dtanalysis.Column{Role: dtanalysis.Condition},
			cell: uint8(4),
			want: []index.Value{index.IntValue(4)},
		},
		"any rejects compound values": {
			col:     dtanalysis.Column{Role: dtanalysis.Condition},
			cell:    map[string]int{},
			wantErr: index.ErrUnsupportedType,
		},
	}

	for name, tc := range cases {
		tc.col.UUID = "col"
		k, err := c.CellKey(tc.col, tc.cell)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("case %s: wanted %v, got %v", name, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %s: unexpected error: %v", name, err)
			continue
		}
		want := index.NewKey(dtanalysis.ColumnDefinition(tc.col), tc.want...)
		if !k.Equal(want) {
			t.Errorf("case %s: wanted %s, got %s", name, want, k)
		}
	}
}
