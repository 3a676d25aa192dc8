package dtanalysis

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ezachrisen/dtanalysis/index"
)

// dateLayouts are the string forms accepted for timestamp cells.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// converter turns the cells of one column into index values.
type converter struct {
	col Column
	typ Type
}

// values converts a cell into the values indexed for it. Blank cells, and
// cells of columns whose role is not indexed, yield no values.
func (c converter) values(cell any) ([]index.Value, error) {
	switch c.col.Role {
	case RowNumber, Description, Metadata:
		return nil, nil
	case Attribute, Condition, Action:
	default:
		return nil, fmt.Errorf("unsupported column role %s", c.col.Role)
	}

	if cell == nil {
		return nil, nil
	}

	if !c.col.listOperator() {
		v, ok, err := c.scalar(cell)
		if err != nil || !ok {
			return nil, err
		}
		return []index.Value{v}, nil
	}

	var items []any
	switch x := cell.(type) {
	case string:
		for _, s := range strings.Split(x, ",") {
			items = append(items, strings.TrimSpace(s))
		}
	case []any:
		items = x
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	default:
		items = []any{cell}
	}
	var out []index.Value
	for _, item := range items {
		v, ok, err := c.scalar(item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// key builds the column key for a cell of the column.
func (c converter) key(cell any) (index.Key, error) {
	vals, err := c.values(cell)
	if err != nil {
		return index.Key{}, err
	}
	return index.NewKey(ColumnDefinition(c.col), vals...), nil
}

// scalar converts one item. ok is false for a blank item.
func (c converter) scalar(item any) (index.Value, bool, error) {
	if item == nil {
		return index.Value{}, false, nil
	}
	if s, isString := item.(string); isString && s == "" {
		if _, wantString := c.typ.(String); !wantString {
			return index.Value{}, false, nil
		}
	}

	switch t := c.typ.(type) {
	case String:
		switch x := item.(type) {
		case string:
			return index.StringValue(x), true, nil
		case fmt.Stringer:
			return index.StringValue(x.String()), true, nil
		}
	case Int:
		switch x := item.(type) {
		case string:
			i, perr := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if perr != nil {
				return c.mismatch(item, perr)
			}
			return index.IntValue(i), true, nil
		case float32, float64:
		default:
			if v, nerr := index.NewValue(item); nerr == nil && v.Kind() == index.Int {
				return v, true, nil
			}
		}
	case Float:
		switch x := item.(type) {
		case string:
			f, perr := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if perr != nil {
				return c.mismatch(item, perr)
			}
			return floatValue(f)
		default:
			if v, nerr := index.NewValue(item); nerr == nil {
				switch v.Kind() {
				case index.Float:
					return v, true, nil
				case index.Int:
					return floatValue(float64(v.Interface().(int64)))
				}
			}
		}
	case Bool:
		switch x := item.(type) {
		case bool:
			return index.MustValue(x), true, nil
		case string:
			b, perr := strconv.ParseBool(strings.TrimSpace(x))
			if perr != nil {
				return c.mismatch(item, perr)
			}
			return index.MustValue(b), true, nil
		}
	case Timestamp:
		switch x := item.(type) {
		case time.Time:
			return index.MustValue(x), true, nil
		case string:
			for _, layout := range dateLayouts {
				if ts, perr := time.Parse(layout, strings.TrimSpace(x)); perr == nil {
					return index.MustValue(ts), true, nil
				}
			}
		}
	case Enum:
		name := fmt.Sprint(item)
		if s, isString := item.(string); isString {
			name = strings.TrimSpace(s)
		}
		if i := slices.Index(t.Values, name); i >= 0 {
			return index.MustValue(index.Enum{Name: name, Ordinal: i}), true, nil
		}
		return c.mismatch(item, fmt.Errorf("%q is not one of %v", name, t.Values))
	case Any:
		v, nerr := index.NewValue(item)
		if nerr != nil {
			return index.Value{}, false, nerr
		}
		return v, !v.IsNull(), nil
	default:
		return index.Value{}, false, fmt.Errorf("unsupported column type %v", c.typ)
	}
	return c.mismatch(item, nil)
}

func (c converter) mismatch(item any, cause error) (index.Value, bool, error) {
	if cause != nil {
		return index.Value{}, false, fmt.Errorf("%w: %s column wants %s, got %T %v: %v", index.ErrTypeMismatch, c.col.Header, c.typ, item, item, cause)
	}
	return index.Value{}, false, fmt.Errorf("%w: %s column wants %s, got %T %v", index.ErrTypeMismatch, c.col.Header, c.typ, item, item)
}

func floatValue(f float64) (index.Value, bool, error) {
	v, err := index.NewValue(f)
	if err != nil {
		return index.Value{}, false, err
	}
	return v, true, nil
}
