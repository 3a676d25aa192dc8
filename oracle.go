package dtanalysis

// Oracle resolves the data type of a fact field. The cache asks it for the
// type of any column that does not declare one.
type Oracle interface {
	FieldType(factType, field string) (Type, bool)
}

// MapOracle is an Oracle backed by a map of fact type to field to type.
type MapOracle map[string]map[string]Type

// FieldType implements Oracle.
func (m MapOracle) FieldType(factType, field string) (Type, bool) {
	t, ok := m[factType][field]
	return t, ok
}

// resolveType returns the declared type of col, the type the oracle knows
// for its fact field, or Any.
func resolveType(col Column, o Oracle) Type {
	if col.Type != nil {
		return col.Type
	}
	if o != nil && col.FactType != "" {
		if t, ok := o.FieldType(col.FactType, col.Field); ok && t != nil {
			return t
		}
	}
	return Any{}
}
