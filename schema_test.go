package dtanalysis_test

import (
	"reflect"
	"testing"

	"github.com/ezachrisen/dtanalysis"
)

func TestString(t *testing.T) {

	cases := map[string]struct {
		typ     dtanalysis.Type
		wantStr string
	}{
		"int": {
			typ:     dtanalysis.Int{},
			wantStr: "int",
		},
		"timestamp": {
			typ:     dtanalysis.Timestamp{},
			wantStr: "timestamp",
		},
		"enum": {
			typ:     dtanalysis.Enum{Values: []string{"LOW", "HIGH"}},
			wantStr: "enum(LOW,HIGH)",
		},
	}

	for key, c := range cases {
		str := c.typ.String()
		if str != c.wantStr {
			t.Errorf("case %s: wanted '%s', got '%s'", key, c.wantStr, str)
		}
	}
}

func TestParser(t *testing.T) {

	cases := map[string]struct {
		str       string
		wantError bool
		wantType  dtanalysis.Type
	}{
		"int": {
			str:      "int",
			wantType: dtanalysis.Int{},
		},
		"integer": {
			str:      "integer",
			wantType: dtanalysis.Int{},
		},
		"float": {
			str:      "float",
			wantType: dtanalysis.Float{},
		},
		"bool": {
			str:      " bool ",
			wantType: dtanalysis.Bool{},
		},
		"date": {
			str:      "date",
			wantType: dtanalysis.Timestamp{},
		},
		"blank": {
			str:      "",
			wantType: dtanalysis.Any{},
		},
		"enum": {
			str:      "enum(BRONZE, SILVER,GOLD)",
			wantType: dtanalysis.Enum{Values: []string{"BRONZE", "SILVER", "GOLD"}},
		},
		"empty enum": {
			str:       "enum()",
			wantError: true,
		},
		"enum with blank value": {
			str:       "enum(A,,B)",
			wantError: true,
		},
		"unclosed enum": {
			str:       "enum(A,B",
			wantError: true,
		},
		"unknown": {
			str:       "map[string]int",
			wantError: true,
		},
	}

	for key, c := range cases {
		typ, err := dtanalysis.ParseType(c.str)
		if c.wantError {
			if err == nil {
				t.Errorf("case %s: wanted error, got none", key)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %s: unexpected error: %v", key, err)
			continue
		}
		if !reflect.DeepEqual(typ, c.wantType) {
			t.Errorf("case %s: wanted %v, got %v", key, c.wantType, typ)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range []dtanalysis.Role{dtanalysis.RowNumber, dtanalysis.Description, dtanalysis.Metadata,
		dtanalysis.Attribute, dtanalysis.Condition, dtanalysis.Action} {
		got, err := dtanalysis.ParseRole(r.String())
		if err != nil {
			t.Fatalf("parsing %s: %v", r, err)
		}
		if got != r {
			t.Errorf("wanted %s, got %s", r, got)
		}
	}
	if _, err := dtanalysis.ParseRole("output"); err == nil {
		t.Error("expected error for unknown role")
	}
}
