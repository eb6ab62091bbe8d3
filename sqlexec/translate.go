package sqlexec

import (
	"fmt"
	"strings"

	"github.com/tinywasm/schema"
)

// Statements translates s into the DDL statements d needs to apply it, in
// execution order.
func Statements(d Dialect, s *schema.Schema) ([]string, error) {
	if err := schema.Check(s); err != nil {
		return nil, err
	}
	switch s.Action {
	case schema.ActionCreate:
		return translateCreate(d, s)
	case schema.ActionUpdate:
		return translateUpdate(d, s)
	default:
		return []string{"DROP TABLE " + d.table(s.Space, s.Name)}, nil
	}
}

// translateCreate emits CREATE TABLE. Dialects with IndexConstraints get
// unique constraints as named indexes after the table, so they can be
// dropped by name later.
func translateCreate(d Dialect, s *schema.Schema) ([]string, error) {
	if len(s.UpdateFields) > 0 || len(s.DeleteFields) > 0 || len(s.DeleteConstraints) > 0 {
		return nil, fmt.Errorf("create of %s with field updates or deletes: %w", s.Qualified(), schema.ErrUnsupported)
	}

	defs := make([]string, 0, len(s.CreateFields)+len(s.CreateConstraints))
	for _, f := range s.CreateFields {
		def, err := d.column(f)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	var indexes []string
	for _, c := range s.CreateConstraints {
		if u, ok := c.Algorithm.(schema.Unique); ok && d.IndexConstraints {
			indexes = append(indexes, d.uniqueIndex(s, c, u, !s.ExclusiveCreate))
			continue
		}
		def, err := d.tableConstraint(s.Qualified(), c)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("create of %s without fields: %w", s.Qualified(), schema.ErrValidation)
	}

	create := "CREATE TABLE "
	if !s.ExclusiveCreate {
		create += "IF NOT EXISTS "
	}
	stmts := []string{create + d.table(s.Space, s.Name) + " (" + strings.Join(defs, ", ") + ")"}
	return append(stmts, indexes...), nil
}

func (d Dialect) uniqueIndex(s *schema.Schema, c schema.Constraint, u schema.Unique, ifNotExists bool) string {
	create := "CREATE UNIQUE INDEX "
	if ifNotExists {
		create += "IF NOT EXISTS "
	}
	return create + d.table(s.Space, c.Identifier(s.Qualified())) +
		" ON " + d.quote(s.Name) + " (" + d.columns(u.Fields) + ")"
}

// translateUpdate orders statements so constraints are dropped before the
// columns they cover and added after the columns they need.
func translateUpdate(d Dialect, s *schema.Schema) ([]string, error) {
	table := d.table(s.Space, s.Name)
	var stmts []string

	for _, f := range s.CreateFields {
		def, err := d.column(f)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, "ALTER TABLE "+table+" ADD COLUMN "+def)
	}

	for _, u := range s.UpdateFields {
		if d.AlterTypeTemplate == "" {
			return nil, fmt.Errorf("retype %s.%s on %s: %w", s.Qualified(), u.Name, d.Name, schema.ErrUnsupported)
		}
		typ, err := d.typeName(u.DataType)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, fmt.Sprintf(d.AlterTypeTemplate, table, d.quote(u.Name.String()), typ))
	}

	for _, del := range s.DeleteConstraints {
		if raw, ok := del.(schema.CustomConstraintDelete); ok {
			stmts = append(stmts, string(raw))
			continue
		}
		name := schema.DeleteIdentifier(s.Qualified(), del)
		if d.IndexConstraints {
			stmts = append(stmts, "DROP INDEX "+d.table(s.Space, name))
		} else {
			stmts = append(stmts, "ALTER TABLE "+table+" DROP CONSTRAINT "+d.quote(name))
		}
	}

	for _, name := range s.DeleteFields {
		stmts = append(stmts, "ALTER TABLE "+table+" DROP COLUMN "+d.quote(name.String()))
	}

	for _, c := range s.CreateConstraints {
		if d.IndexConstraints {
			u, ok := c.Algorithm.(schema.Unique)
			if !ok {
				return nil, fmt.Errorf("add %T to existing %s on %s: %w", c.Algorithm, s.Qualified(), d.Name, schema.ErrUnsupported)
			}
			stmts = append(stmts, d.uniqueIndex(s, c, u, false))
			continue
		}
		def, err := d.tableConstraint(s.Qualified(), c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, "ALTER TABLE "+table+" ADD "+def)
	}

	if len(stmts) == 0 {
		return nil, fmt.Errorf("update of %s changes nothing: %w", s.Qualified(), schema.ErrValidation)
	}
	return stmts, nil
}

func (d Dialect) quote(ident string) string {
	return d.Quote + strings.ReplaceAll(ident, d.Quote, d.Quote+d.Quote) + d.Quote
}

func (d Dialect) table(space, name string) string {
	if space == "" {
		return d.quote(name)
	}
	return d.quote(space) + "." + d.quote(name)
}

func (d Dialect) columns(fields []schema.FieldName) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = d.quote(f.String())
	}
	return strings.Join(quoted, ", ")
}

func (d Dialect) typeName(t schema.DataType) (string, error) {
	switch t := t.(type) {
	case schema.DataKind:
		name, ok := d.Types[t]
		if !ok {
			return "", fmt.Errorf("type %s on %s: %w", t, d.Name, schema.ErrUnsupported)
		}
		return name, nil
	case schema.Enum:
		return d.EnumType, nil
	case schema.Array:
		if d.ArrayType == nil {
			return d.DictionaryType, nil
		}
		inner, err := d.typeName(t.Of)
		if err != nil {
			return "", err
		}
		return d.ArrayType(inner), nil
	case schema.Dictionary:
		return d.DictionaryType, nil
	case schema.CustomType:
		return string(t), nil
	default:
		return "", fmt.Errorf("type %T: %w", t, schema.ErrUnsupported)
	}
}

func (d Dialect) column(f schema.FieldDefinition) (string, error) {
	typ, err := d.typeName(f.DataType)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, c := range f.Constraints {
		switch c := c.(type) {
		case schema.Required:
			parts = append(parts, "NOT NULL")
		case schema.Identifier:
			if !c.Auto {
				parts = append(parts, "PRIMARY KEY")
				continue
			}
			if d.AutoIdentifierType != "" {
				typ = d.AutoIdentifierType
			}
			parts = append(parts, d.AutoIdentifier)
		case schema.References:
			parts = append(parts, d.references(c.Space, c.Schema, []schema.FieldName{c.Field}, c.OnDelete, c.OnUpdate))
		case schema.CustomFieldConstraint:
			parts = append(parts, string(c))
		}
	}

	name := d.quote(f.Name.String())
	if e, ok := f.DataType.(schema.Enum); ok {
		parts = append(parts, "CHECK ("+name+" IN ("+literals(e.Cases)+"))")
	}

	def := name + " " + typ
	if len(parts) > 0 {
		def += " " + strings.Join(parts, " ")
	}
	return def, nil
}

func (d Dialect) tableConstraint(table string, c schema.Constraint) (string, error) {
	var body string
	switch a := c.Algorithm.(type) {
	case schema.Unique:
		body = "UNIQUE (" + d.columns(a.Fields) + ")"
	case schema.CompositeIdentifier:
		body = "PRIMARY KEY (" + d.columns(a.Fields) + ")"
	case schema.ForeignKey:
		body = "FOREIGN KEY (" + d.columns(a.Fields) + ") " +
			d.references(a.Space, a.Schema, a.ForeignFields, a.OnDelete, a.OnUpdate)
	case schema.CustomConstraint:
		if c.Name == "" {
			return string(a), nil
		}
		body = string(a)
	default:
		return "", fmt.Errorf("constraint %T: %w", c.Algorithm, schema.ErrUnsupported)
	}
	return "CONSTRAINT " + d.quote(c.Identifier(table)) + " " + body, nil
}

func (d Dialect) references(space, table string, fields []schema.FieldName, onDelete, onUpdate schema.ForeignKeyAction) string {
	return "REFERENCES " + d.table(space, table) + " (" + d.columns(fields) + ")" +
		" ON DELETE " + action(onDelete) + " ON UPDATE " + action(onUpdate)
}

func action(a schema.ForeignKeyAction) string {
	switch a {
	case schema.Restrict:
		return "RESTRICT"
	case schema.Cascade:
		return "CASCADE"
	case schema.SetNull:
		return "SET NULL"
	case schema.SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

func literals(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
