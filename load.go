package dtanalysis

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// yamlTable is the YAML form of a Table:
//
//	name: discounts
//	columns:
//	  - {header: "#", role: rownumber}
//	  - {header: Age, role: condition, type: int, factType: Person, field: age, operator: ">="}
//	  - {header: Discount, role: action, type: float}
//	rows:
//	  - [1, 18, 0.1]
//	  - [2, 65, 0.2]
type yamlTable struct {
	Name    string       `yaml:"name"`
	Columns []yamlColumn `yaml:"columns"`
	Rows    [][]any      `yaml:"rows"`
}

type yamlColumn struct {
	UUID     string `yaml:"uuid,omitempty"`
	Header   string `yaml:"header"`
	Role     string `yaml:"role"`
	Type     string `yaml:"type,omitempty"`
	FactType string `yaml:"factType,omitempty"`
	Field    string `yaml:"field,omitempty"`
	Operator string `yaml:"operator,omitempty"`
}

// ParseTable reads a table from YAML. Columns without a uuid are given a
// random one. A column without a type is typed by the oracle, if any, when
// the table is indexed.
func ParseTable(data []byte) (*Table, error) {
	var y yamlTable
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parsing table: %w", err)
	}

	t := &Table{Name: y.Name, Data: y.Rows}
	for i, yc := range y.Columns {
		role, err := ParseRole(yc.Role)
		if err != nil {
			return nil, fmt.Errorf("parsing table: column %d (%s): %w", i, yc.Header, err)
		}
		col := Column{
			UUID:     yc.UUID,
			Header:   yc.Header,
			Role:     role,
			FactType: yc.FactType,
			Field:    yc.Field,
			Operator: yc.Operator,
		}
		if col.UUID == "" {
			col.UUID = uuid.NewString()
		}
		if yc.Type != "" {
			if col.Type, err = ParseType(yc.Type); err != nil {
				return nil, fmt.Errorf("parsing table: column %d (%s): %w", i, yc.Header, err)
			}
		}
		t.Columns = append(t.Columns, col)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("parsing table: %w", err)
	}
	return t, nil
}

// MarshalTable writes t as YAML in the form read by ParseTable.
func MarshalTable(t *Table) ([]byte, error) {
	y := yamlTable{Name: t.Name, Rows: t.Data}
	for _, c := range t.Columns {
		yc := yamlColumn{
			UUID:     c.UUID,
			Header:   c.Header,
			Role:     c.Role.String(),
			FactType: c.FactType,
			Field:    c.Field,
			Operator: c.Operator,
		}
		if c.Type != nil {
			yc.Type = c.Type.String()
		}
		y.Columns = append(y.Columns, yc)
	}
	out, err := yaml.Marshal(y)
	if err != nil {
		return nil, fmt.Errorf("marshaling table: %w", err)
	}
	return out, nil
}
