package dtanalysis

import (
	"fmt"
	"strings"
	"time"
)

// Role is the part a column plays in a decision table.
type Role int

const (
	RowNumber Role = iota
	Description
	Metadata
	Attribute
	Condition
	Action
)

func (r Role) String() string {
	switch r {
	case RowNumber:
		return "rownumber"
	case Description:
		return "description"
	case Metadata:
		return "metadata"
	case Attribute:
		return "attribute"
	case Condition:
		return "condition"
	case Action:
		return "action"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole parses the lower-case role names.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rownumber", "row":
		return RowNumber, nil
	case "description":
		return Description, nil
	case "metadata":
		return Metadata, nil
	case "attribute":
		return Attribute, nil
	case "condition":
		return Condition, nil
	case "action":
		return Action, nil
	default:
		return 0, fmt.Errorf("unrecognized column role: %s", s)
	}
}

// indexed reports whether cells of the role are indexed as keys.
func (r Role) indexed() bool {
	return r == Attribute || r == Condition || r == Action
}

// Column describes one column of a decision table.
type Column struct {
	// Unique, stable identifier for the column. The column's cells are
	// indexed under a key definition with this ID.
	UUID string

	// User-friendly column header
	Header string

	Role Role

	// Data type of the cells. If nil, the type is looked up with the
	// cache's Oracle using FactType and Field, falling back to Any.
	Type Type

	// The fact type and field the column constrains or sets (optional)
	FactType string
	Field    string

	// Comparison operator of a condition column: ==, !=, <, <=, >, >=,
	// in, not in. Cells of in / not in columns hold comma-separated lists.
	Operator string
}

func (c *Column) String() string {
	return fmt.Sprintf("%s %s (%s %v)", c.Role, c.Header, c.UUID, c.Type)
}

// listOperator reports whether the column's cells hold lists of values.
func (c *Column) listOperator() bool {
	switch strings.ToLower(strings.TrimSpace(c.Operator)) {
	case "in", "not in":
		return true
	default:
		return false
	}
}

// Type defines the data type of a column's cells.
type Type interface {
	// Implements the stringer interface
	String() string

	// Zero returns the value used when a cell of the type is blank
	// in a template; cells that are nil are never indexed.
	Zero() any
}

// String defines a string type.
type String struct{}

// Int defines a whole-number type (64 bits).
type Int struct{}

// Float defines a decimal type (64-bit float).
type Float struct{}

// Bool defines a boolean type.
type Bool struct{}

// Timestamp defines a date/time type.
type Timestamp struct{}

// Any defines a type for values whose type is not declared. Any Go scalar
// accepted by the index is accepted.
type Any struct{}

// Enum defines a type whose values are taken from a fixed, ordered list.
// Values compare by their position in the list.
type Enum struct {
	Values []string
}

// Zero Methods
func (String) Zero() any    { return "" }
func (Int) Zero() any       { return int64(0) }
func (Float) Zero() any     { return float64(0) }
func (Bool) Zero() any      { return false }
func (Timestamp) Zero() any { return time.Time{} }
func (Any) Zero() any       { return nil }
func (t Enum) Zero() any {
	if len(t.Values) == 0 {
		return nil
	}
	return t.Values[0]
}

// String Methods
func (String) String() string    { return "string" }
func (Int) String() string       { return "int" }
func (Float) String() string     { return "float" }
func (Bool) String() string      { return "bool" }
func (Timestamp) String() string { return "timestamp" }
func (Any) String() string       { return "any" }
func (t Enum) String() string    { return "enum(" + strings.Join(t.Values, ",") + ")" }

// ParseType parses a string that represents a column type and returns the type.
// The primitive types are their lower-case names (string, int, float, bool,
// timestamp, any). Enumerations look like this: enum(LOW,MEDIUM,HIGH)
func ParseType(t string) (Type, error) {
	t = strings.TrimSpace(t)

	if strings.HasPrefix(t, "enum(") {
		return parseEnum(t)
	}

	switch t {
	case "string":
		return String{}, nil
	case "int", "integer":
		return Int{}, nil
	case "float", "decimal":
		return Float{}, nil
	case "bool", "boolean":
		return Bool{}, nil
	case "timestamp", "date":
		return Timestamp{}, nil
	case "any", "":
		return Any{}, nil
	default:
		return Any{}, fmt.Errorf("unrecognized type: %s", t)
	}
}

// parseEnum parses a string and returns an enum type.
// The string must be in the form enum(<value>,<value>,...).
// Example: enum(LOW,MEDIUM,HIGH)
func parseEnum(t string) (Type, error) {
	startParen := strings.Index(t, "(")
	endParen := strings.LastIndex(t, ")")

	if startParen == -1 || endParen == -1 || endParen != len(t)-1 || endParen-startParen == 1 {
		return nil, fmt.Errorf("bad enum definition: %s", t)
	}

	var values []string
	for _, v := range strings.Split(t[startParen+1:endParen], ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("bad enum definition: %s: empty value", t)
		}
		values = append(values, v)
	}
	return Enum{Values: values}, nil
}
