package schema

import "fmt"

// Check reports descriptors no executor can apply. The Builder never
// calls it; executors do before touching the backend.
func Check(s *Schema) error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if s.Action == ActionNone {
		return fmt.Errorf("%w: action not set", ErrValidation)
	}

	for _, c := range s.CreateConstraints {
		switch a := c.Algorithm.(type) {
		case nil:
			return fmt.Errorf("%w: constraint %q has no algorithm", ErrValidation, c.Name)
		case ForeignKey:
			if len(a.Fields) == 0 || len(a.Fields) != len(a.ForeignFields) {
				return fmt.Errorf("%w: foreign key to %s has %d local and %d foreign fields",
					ErrValidation, a.Schema, len(a.Fields), len(a.ForeignFields))
			}
		case Unique:
			if len(a.Fields) == 0 {
				return fmt.Errorf("%w: unique constraint without fields", ErrValidation)
			}
		case CompositeIdentifier:
			if len(a.Fields) == 0 {
				return fmt.Errorf("%w: composite identifier without fields", ErrValidation)
			}
		}
	}

	for _, f := range s.CreateFields {
		if f.Name == nil || f.Name.String() == "" {
			return fmt.Errorf("%w: field without name", ErrValidation)
		}
		if f.DataType == nil {
			return fmt.Errorf("%w: field %s has no data type", ErrValidation, f.Name)
		}
		for _, fc := range f.Constraints {
			if ref, ok := fc.(References); ok && (ref.Field == nil || ref.Schema == "") {
				return fmt.Errorf("%w: field %s references nothing", ErrValidation, f.Name)
			}
		}
	}
	return nil
}
