package schema

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Builder accumulates one Schema and submits it to the DB's Executor.
// Consumers hold a *Builder reference in variables for incremental building.
// A Builder is not safe for concurrent use.
type Builder struct {
	db     *DB
	schema *Schema
}

// Descriptor returns the Schema being built.
func (b *Builder) Descriptor() *Schema {
	return b.schema
}

// ID adds the standard "id" UUID identifier that the caller assigns.
func (b *Builder) ID() *Builder {
	return b.Field(KeyID, TypeUUID, Identifier{Auto: false})
}

// Field adds a field definition.
func (b *Builder) Field(key FieldKey, dataType DataType, constraints ...FieldConstraint) *Builder {
	return b.FieldDef(FieldDefinition{
		Name:        key,
		DataType:    dataType,
		Constraints: constraints,
	})
}

// FieldDef adds an already built field definition.
func (b *Builder) FieldDef(def FieldDefinition) *Builder {
	b.schema.CreateFields = append(b.schema.CreateFields, def)
	return b
}

// Unique adds a unique constraint over fields, named by the executor.
func (b *Builder) Unique(fields ...FieldKey) *Builder {
	return b.UniqueNamed("", fields...)
}

// UniqueNamed adds a unique constraint over fields called name.
func (b *Builder) UniqueNamed(name string, fields ...FieldKey) *Builder {
	return b.Constraint(Constraint{
		Algorithm: Unique{Fields: keys(fields)},
		Name:      name,
	})
}

// CompositeIdentifier makes the ordered fields the identifier.
func (b *Builder) CompositeIdentifier(fields ...FieldKey) *Builder {
	return b.Constraint(Constraint{
		Algorithm: CompositeIdentifier{Fields: keys(fields)},
	})
}

// Constraint adds an arbitrary constraint.
func (b *Builder) Constraint(c Constraint) *Builder {
	b.schema.CreateConstraints = append(b.schema.CreateConstraints, c)
	return b
}

// DeleteUnique removes the unnamed unique constraint over fields.
func (b *Builder) DeleteUnique(fields ...FieldKey) *Builder {
	return b.DeleteConstraint(DropConstraint{
		Algorithm: Unique{Fields: keys(fields)},
	})
}

// DeleteConstraintName removes a constraint by name.
func (b *Builder) DeleteConstraintName(name string) *Builder {
	return b.DeleteConstraint(DropName(name))
}

// DeleteConstraint adds an arbitrary constraint delete.
func (b *Builder) DeleteConstraint(d ConstraintDelete) *Builder {
	b.schema.DeleteConstraints = append(b.schema.DeleteConstraints, d)
	return b
}

// ForeignKeyOption customizes a foreign key added by ForeignKey or ForeignKeys.
type ForeignKeyOption func(*Constraint, *ForeignKey)

// InSpace sets the space of the referenced schema.
func InSpace(space string) ForeignKeyOption {
	return func(_ *Constraint, fk *ForeignKey) { fk.Space = space }
}

// OnDelete sets the delete action. Defaults to NoAction.
func OnDelete(a ForeignKeyAction) ForeignKeyOption {
	return func(_ *Constraint, fk *ForeignKey) { fk.OnDelete = a }
}

// OnUpdate sets the update action. Defaults to NoAction.
func OnUpdate(a ForeignKeyAction) ForeignKeyOption {
	return func(_ *Constraint, fk *ForeignKey) { fk.OnUpdate = a }
}

// Named sets the constraint name.
func Named(name string) ForeignKeyOption {
	return func(c *Constraint, _ *ForeignKey) { c.Name = name }
}

// ForeignKey links field to foreignField of foreignSchema.
func (b *Builder) ForeignKey(field FieldKey, foreignSchema string, foreignField FieldKey, opts ...ForeignKeyOption) *Builder {
	return b.ForeignKeys([]FieldKey{field}, foreignSchema, []FieldKey{foreignField}, opts...)
}

// ForeignKeys links fields to foreignFields of foreignSchema by position.
func (b *Builder) ForeignKeys(fields []FieldKey, foreignSchema string, foreignFields []FieldKey, opts ...ForeignKeyOption) *Builder {
	fk := ForeignKey{
		Fields:        keys(fields),
		Schema:        foreignSchema,
		ForeignFields: keys(foreignFields),
	}
	var c Constraint
	for _, opt := range opts {
		opt(&c, &fk)
	}
	c.Algorithm = fk
	return b.Constraint(c)
}

// UpdateField retypes the field key.
func (b *Builder) UpdateField(key FieldKey, dataType DataType) *Builder {
	return b.UpdateFieldDef(FieldUpdate{
		Name:     key,
		DataType: dataType,
	})
}

// UpdateFieldDef adds an already built field update.
func (b *Builder) UpdateFieldDef(u FieldUpdate) *Builder {
	b.schema.UpdateFields = append(b.schema.UpdateFields, u)
	return b
}

// DeleteField removes the field key.
func (b *Builder) DeleteField(key FieldKey) *Builder {
	return b.DeleteFieldName(key)
}

// DeleteFieldName removes a field by any FieldName.
func (b *Builder) DeleteFieldName(name FieldName) *Builder {
	b.schema.DeleteFields = append(b.schema.DeleteFields, name)
	return b
}

// IgnoreExisting turns a create of an existing target into a no-op
// instead of a failure.
func (b *Builder) IgnoreExisting() *Builder {
	b.schema.ExclusiveCreate = false
	return b
}

// Create submits the Schema as a create.
func (b *Builder) Create(ctx context.Context) *Future {
	return b.submit(ctx, ActionCreate)
}

// Update submits the Schema as an update.
func (b *Builder) Update(ctx context.Context) *Future {
	return b.submit(ctx, ActionUpdate)
}

// Delete submits the Schema as a delete.
func (b *Builder) Delete(ctx context.Context) *Future {
	return b.submit(ctx, ActionDelete)
}

// submit stamps action and hands a snapshot to the executor. Calling more
// than one terminal method dispatches once per call.
func (b *Builder) submit(ctx context.Context, action Action) *Future {
	b.schema.Action = action
	s := b.schema.Clone()

	log := b.db.log.With(
		zap.String("schema", s.Name),
		zap.String("space", s.Space),
		zap.Stringer("action", action),
	)
	log.Debug("dispatching schema change",
		zap.Int("create_fields", len(s.CreateFields)),
		zap.Int("update_fields", len(s.UpdateFields)),
		zap.Int("delete_fields", len(s.DeleteFields)),
		zap.Int("create_constraints", len(s.CreateConstraints)),
		zap.Int("delete_constraints", len(s.DeleteConstraints)),
		zap.Bool("exclusive_create", s.ExclusiveCreate),
	)

	if b.db.exec == nil {
		err := fmt.Errorf("schema %s: %w", s.Qualified(), ErrNoExecutor)
		log.Warn("schema change failed", zap.Error(err))
		return Resolved(err)
	}

	f := newFuture()
	go func() {
		err := b.db.exec.Execute(ctx, s)
		if err != nil {
			log.Warn("schema change failed", zap.Error(err))
		}
		f.resolve(err)
	}()
	return f
}
