package schema

// Deep copies used by Schema.Clone. Values the builder never stores behind
// a slice (names, kinds, custom strings) are copied by assignment.

func cloneNames(names []FieldName) []FieldName {
	if names == nil {
		return nil
	}
	return append([]FieldName(nil), names...)
}

func cloneDataType(t DataType) DataType {
	switch t := t.(type) {
	case Enum:
		if t.Cases != nil {
			t.Cases = append([]string(nil), t.Cases...)
		}
		return t
	case Array:
		t.Of = cloneDataType(t.Of)
		return t
	case Dictionary:
		t.Of = cloneDataType(t.Of)
		return t
	default:
		return t
	}
}

func cloneAlgorithm(a ConstraintAlgorithm) ConstraintAlgorithm {
	switch a := a.(type) {
	case Unique:
		a.Fields = cloneNames(a.Fields)
		return a
	case CompositeIdentifier:
		a.Fields = cloneNames(a.Fields)
		return a
	case ForeignKey:
		a.Fields = cloneNames(a.Fields)
		a.ForeignFields = cloneNames(a.ForeignFields)
		return a
	default:
		return a
	}
}

func cloneFieldDefinition(f FieldDefinition) FieldDefinition {
	f.DataType = cloneDataType(f.DataType)
	if f.Constraints != nil {
		f.Constraints = append([]FieldConstraint(nil), f.Constraints...)
	}
	return f
}

func cloneConstraintDelete(d ConstraintDelete) ConstraintDelete {
	if drop, ok := d.(DropConstraint); ok {
		drop.Algorithm = cloneAlgorithm(drop.Algorithm)
		return drop
	}
	return d
}
