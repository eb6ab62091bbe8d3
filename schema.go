package schema

// Action represents the kind of schema change a Schema describes.
type Action int

const (
	// ActionNone is the zero value; a Schema carries it until a terminal
	// Builder method stamps the real action.
	ActionNone Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Schema describes one schema-change intent.
// Executors read these fields and apply every list as a single change.
type Schema struct {
	Action Action
	Name   string
	Space  string

	CreateFields      []FieldDefinition
	UpdateFields      []FieldUpdate
	DeleteFields      []FieldName
	CreateConstraints []Constraint
	DeleteConstraints []ConstraintDelete

	// ExclusiveCreate makes a create fail when the target already exists.
	// When false the create is skipped for an existing target.
	ExclusiveCreate bool
}

// NewSchema returns an empty descriptor for name in space.
func NewSchema(name, space string) *Schema {
	return &Schema{
		Name:            name,
		Space:           space,
		ExclusiveCreate: true,
	}
}

// Qualified returns "space.name", or just the name when no space is set.
func (s *Schema) Qualified() string {
	if s.Space == "" {
		return s.Name
	}
	return s.Space + "." + s.Name
}

// Clone returns a deep copy, so the copy can be handed to an executor while
// the original keeps accumulating and callers edit it in place.
func (s *Schema) Clone() *Schema {
	c := *s
	c.CreateFields = nil
	for _, f := range s.CreateFields {
		c.CreateFields = append(c.CreateFields, cloneFieldDefinition(f))
	}
	c.UpdateFields = nil
	for _, u := range s.UpdateFields {
		u.DataType = cloneDataType(u.DataType)
		c.UpdateFields = append(c.UpdateFields, u)
	}
	c.DeleteFields = cloneNames(s.DeleteFields)
	c.CreateConstraints = nil
	for _, con := range s.CreateConstraints {
		con.Algorithm = cloneAlgorithm(con.Algorithm)
		c.CreateConstraints = append(c.CreateConstraints, con)
	}
	c.DeleteConstraints = nil
	for _, d := range s.DeleteConstraints {
		c.DeleteConstraints = append(c.DeleteConstraints, cloneConstraintDelete(d))
	}
	return &c
}
