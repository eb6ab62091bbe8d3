package schema

// FieldName addresses a field: either a typed FieldKey or a RawName.
type FieldName interface {
	isFieldName()
	String() string
}

// FieldKey is the typed name of a field.
type FieldKey string

const (
	KeyID        FieldKey = "id"
	KeyAggregate FieldKey = "aggregate"
)

// Prefix joins prefix and key, e.g. Prefix("home", "street") is "home_street".
func Prefix(prefix, key FieldKey) FieldKey {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

func (k FieldKey) String() string { return string(k) }

// RawName is a field name the builder does not interpret.
type RawName string

func (n RawName) String() string { return string(n) }

func (FieldKey) isFieldName() {}
func (RawName) isFieldName()  {}

// keys converts typed keys to field names, keeping their order.
func keys(fields []FieldKey) []FieldName {
	names := make([]FieldName, len(fields))
	for i, f := range fields {
		names[i] = f
	}
	return names
}

// FieldConstraint is a column-level rule:
// Required, Identifier, References or CustomFieldConstraint.
type FieldConstraint interface {
	isFieldConstraint()
}

// Required marks a field NOT NULL.
type Required struct{}

// Identifier marks a field as the primary identifier.
// Auto asks the backend to generate values.
type Identifier struct {
	Auto bool
}

// References is a single-column foreign key declared on the field itself.
type References struct {
	Schema   string
	Space    string
	Field    FieldName
	OnDelete ForeignKeyAction
	OnUpdate ForeignKeyAction
}

// CustomFieldConstraint is passed to the backend verbatim.
type CustomFieldConstraint string

func (Required) isFieldConstraint()              {}
func (Identifier) isFieldConstraint()            {}
func (References) isFieldConstraint()            {}
func (CustomFieldConstraint) isFieldConstraint() {}

// FieldDefinition describes a field to add.
type FieldDefinition struct {
	Name        FieldName
	DataType    DataType
	Constraints []FieldConstraint
}

// FieldUpdate retypes an existing field.
type FieldUpdate struct {
	Name     FieldName
	DataType DataType
}
