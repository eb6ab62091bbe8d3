// Package manifest reads schema changes from YAML documents.
//
//	schema: users
//	action: create
//	fields:
//	  - {name: id, type: uuid, identifier: true}
//	  - {name: email, type: string, required: true}
//	unique:
//	  - fields: [email]
package manifest

import (
	"context"
	"fmt"
	"io"

	"github.com/tinywasm/schema"
	"gopkg.in/yaml.v3"
)

// Manifest is one schema change.
type Manifest struct {
	Schema              string             `yaml:"schema"`
	Space               string             `yaml:"space,omitempty"`
	Action              string             `yaml:"action"`
	IgnoreExisting      bool               `yaml:"ignore_existing,omitempty"`
	Fields              []Field            `yaml:"fields,omitempty"`
	UpdateFields        []FieldUpdate      `yaml:"update_fields,omitempty"`
	DeleteFields        []string           `yaml:"delete_fields,omitempty"`
	Unique              []Unique           `yaml:"unique,omitempty"`
	CompositeIdentifier []string           `yaml:"composite_identifier,omitempty"`
	ForeignKeys         []ForeignKey       `yaml:"foreign_keys,omitempty"`
	DeleteConstraints   []DeleteConstraint `yaml:"delete_constraints,omitempty"`
}

type Field struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"`
	Required   bool       `yaml:"required,omitempty"`
	Identifier bool       `yaml:"identifier,omitempty"`
	Auto       bool       `yaml:"auto,omitempty"`
	References *Reference `yaml:"references,omitempty"`
	Custom     []string   `yaml:"custom,omitempty"`
}

type Reference struct {
	Schema   string `yaml:"schema"`
	Space    string `yaml:"space,omitempty"`
	Field    string `yaml:"field"`
	OnDelete string `yaml:"on_delete,omitempty"`
	OnUpdate string `yaml:"on_update,omitempty"`
}

type FieldUpdate struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Unique struct {
	Name   string   `yaml:"name,omitempty"`
	Fields []string `yaml:"fields"`
}

type ForeignKey struct {
	Name          string   `yaml:"name,omitempty"`
	Fields        []string `yaml:"fields"`
	Schema        string   `yaml:"schema"`
	Space         string   `yaml:"space,omitempty"`
	ForeignFields []string `yaml:"foreign_fields"`
	OnDelete      string   `yaml:"on_delete,omitempty"`
	OnUpdate      string   `yaml:"on_update,omitempty"`
}

// DeleteConstraint names a constraint to drop either by Name or by the
// field set of the unique constraint it was derived from.
type DeleteConstraint struct {
	Name   string   `yaml:"name,omitempty"`
	Unique []string `yaml:"unique,omitempty"`
	Custom string   `yaml:"custom,omitempty"`
}

// Decode reads one manifest. Unknown keys are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w: %w", schema.ErrValidation, err)
	}
	if m.Schema == "" {
		return nil, fmt.Errorf("manifest: %w", schema.ErrEmptyName)
	}
	if _, err := m.action(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) action() (schema.Action, error) {
	switch m.Action {
	case "create", "":
		return schema.ActionCreate, nil
	case "update":
		return schema.ActionUpdate, nil
	case "delete":
		return schema.ActionDelete, nil
	}
	return schema.ActionNone, fmt.Errorf("action %q: %w", m.Action, schema.ErrValidation)
}

// Builder returns a builder for the manifest's target on db with every
// manifest entry applied.
func (m *Manifest) Builder(db *schema.DB) (*schema.Builder, error) {
	b := db.SchemaIn(m.Schema, m.Space)
	if err := m.Apply(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Submit applies the manifest to a new builder and runs its action.
func (m *Manifest) Submit(ctx context.Context, db *schema.DB) *schema.Future {
	action, err := m.action()
	if err != nil {
		return schema.Resolved(err)
	}
	b, err := m.Builder(db)
	if err != nil {
		return schema.Resolved(err)
	}
	switch action {
	case schema.ActionUpdate:
		return b.Update(ctx)
	case schema.ActionDelete:
		return b.Delete(ctx)
	default:
		return b.Create(ctx)
	}
}

// Apply adds the manifest's entries to b in document order, grouped by key.
func (m *Manifest) Apply(b *schema.Builder) error {
	for _, f := range m.Fields {
		def, err := f.definition()
		if err != nil {
			return err
		}
		b.FieldDef(def)
	}

	for _, u := range m.UpdateFields {
		t, err := ParseDataType(u.Type)
		if err != nil {
			return fmt.Errorf("update field %s: %w", u.Name, err)
		}
		b.UpdateField(schema.FieldKey(u.Name), t)
	}

	for _, name := range m.DeleteFields {
		b.DeleteField(schema.FieldKey(name))
	}

	for _, u := range m.Unique {
		b.UniqueNamed(u.Name, fieldKeys(u.Fields)...)
	}

	if len(m.CompositeIdentifier) > 0 {
		b.CompositeIdentifier(fieldKeys(m.CompositeIdentifier)...)
	}

	for _, fk := range m.ForeignKeys {
		onDelete, err := ParseAction(fk.OnDelete)
		if err != nil {
			return err
		}
		onUpdate, err := ParseAction(fk.OnUpdate)
		if err != nil {
			return err
		}
		b.ForeignKeys(fieldKeys(fk.Fields), fk.Schema, fieldKeys(fk.ForeignFields),
			schema.InSpace(fk.Space),
			schema.OnDelete(onDelete),
			schema.OnUpdate(onUpdate),
			schema.Named(fk.Name),
		)
	}

	for _, d := range m.DeleteConstraints {
		switch {
		case d.Name != "":
			b.DeleteConstraintName(d.Name)
		case len(d.Unique) > 0:
			b.DeleteUnique(fieldKeys(d.Unique)...)
		case d.Custom != "":
			b.DeleteConstraint(schema.CustomConstraintDelete(d.Custom))
		default:
			return fmt.Errorf("delete_constraints entry without name, unique or custom: %w", schema.ErrValidation)
		}
	}

	if m.IgnoreExisting {
		b.IgnoreExisting()
	}
	return nil
}

func (f Field) definition() (schema.FieldDefinition, error) {
	t, err := ParseDataType(f.Type)
	if err != nil {
		return schema.FieldDefinition{}, fmt.Errorf("field %s: %w", f.Name, err)
	}
	def := schema.FieldDefinition{Name: schema.FieldKey(f.Name), DataType: t}
	if f.Required {
		def.Constraints = append(def.Constraints, schema.Required{})
	}
	if f.Identifier || f.Auto {
		def.Constraints = append(def.Constraints, schema.Identifier{Auto: f.Auto})
	}
	if r := f.References; r != nil {
		onDelete, err := ParseAction(r.OnDelete)
		if err != nil {
			return schema.FieldDefinition{}, err
		}
		onUpdate, err := ParseAction(r.OnUpdate)
		if err != nil {
			return schema.FieldDefinition{}, err
		}
		def.Constraints = append(def.Constraints, schema.References{
			Schema:   r.Schema,
			Space:    r.Space,
			Field:    schema.FieldKey(r.Field),
			OnDelete: onDelete,
			OnUpdate: onUpdate,
		})
	}
	for _, c := range f.Custom {
		def.Constraints = append(def.Constraints, schema.CustomFieldConstraint(c))
	}
	return def, nil
}

func fieldKeys(names []string) []schema.FieldKey {
	keys := make([]schema.FieldKey, len(names))
	for i, n := range names {
		keys[i] = schema.FieldKey(n)
	}
	return keys
}
