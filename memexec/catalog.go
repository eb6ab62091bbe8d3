// Package memexec is an in-memory schema.Executor. It keeps a catalog of
// tables and applies each Schema atomically, which makes it the reference
// for how executors report conflicts.
package memexec

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tinywasm/schema"
	"go.uber.org/zap"
)

// Field is a column as stored in the catalog.
type Field struct {
	Name        string
	DataType    schema.DataType
	Constraints []schema.FieldConstraint
}

// NamedConstraint is a table constraint under its resolved name.
type NamedConstraint struct {
	Name      string
	Algorithm schema.ConstraintAlgorithm
}

// Table is a catalog entry.
type Table struct {
	Space       string
	Name        string
	Fields      []Field
	Constraints []NamedConstraint
}

func (t *Table) qualified() string {
	if t.Space == "" {
		return t.Name
	}
	return t.Space + "." + t.Name
}

func (t *Table) clone() *Table {
	c := *t
	c.Fields = append([]Field(nil), t.Fields...)
	c.Constraints = append([]NamedConstraint(nil), t.Constraints...)
	return &c
}

func (t *Table) field(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) constraint(name string) int {
	for i, c := range t.Constraints {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Catalog implements schema.Executor over an in-memory set of tables.
// It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
	log    *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an empty Catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		tables: make(map[string]*Table),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns a copy of the table name in space.
func (c *Catalog) Table(space, name string) (Table, bool) {
	key := (&schema.Schema{Space: space, Name: name}).Qualified()
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[key]
	if !ok {
		return Table{}, false
	}
	return *t.clone(), true
}

// Tables lists the qualified names of every table, sorted.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute applies s to the catalog. Either every list of s is applied or
// the catalog is left unchanged.
func (c *Catalog) Execute(ctx context.Context, s *schema.Schema) error {
	if err := schema.Check(s); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := s.Qualified()
	existing, ok := c.tables[key]
	log := c.log.With(zap.String("table", key), zap.Stringer("action", s.Action))

	switch s.Action {
	case schema.ActionCreate:
		if ok {
			if s.ExclusiveCreate {
				return fmt.Errorf("table %s: %w", key, schema.ErrExists)
			}
			log.Debug("table exists, create skipped")
			return nil
		}
		t := &Table{Space: s.Space, Name: s.Name}
		if err := c.apply(t, s); err != nil {
			return err
		}
		c.tables[key] = t
	case schema.ActionUpdate:
		if !ok {
			return fmt.Errorf("table %s: %w", key, schema.ErrNotFound)
		}
		t := existing.clone()
		if err := c.apply(t, s); err != nil {
			return err
		}
		c.tables[key] = t
	case schema.ActionDelete:
		if !ok {
			return fmt.Errorf("table %s: %w", key, schema.ErrNotFound)
		}
		delete(c.tables, key)
	}

	log.Debug("schema change applied")
	return nil
}

// apply mutates t, which is never the stored table, with every list of s.
func (c *Catalog) apply(t *Table, s *schema.Schema) error {
	for _, def := range s.CreateFields {
		name := def.Name.String()
		if t.field(name) >= 0 {
			return fmt.Errorf("field %s.%s: %w", t.qualified(), name, schema.ErrExists)
		}
		for _, fc := range def.Constraints {
			if ref, ok := fc.(schema.References); ok {
				if err := c.checkReference(t, ref.Space, ref.Schema, []schema.FieldName{ref.Field}); err != nil {
					return err
				}
			}
		}
		t.Fields = append(t.Fields, Field{
			Name:        name,
			DataType:    def.DataType,
			Constraints: def.Constraints,
		})
	}

	for _, u := range s.UpdateFields {
		i := t.field(u.Name.String())
		if i < 0 {
			return fmt.Errorf("field %s.%s: %w", t.qualified(), u.Name, schema.ErrNotFound)
		}
		t.Fields[i].DataType = u.DataType
	}

	for _, d := range s.DeleteConstraints {
		name := schema.DeleteIdentifier(t.qualified(), d)
		if name == "" {
			return fmt.Errorf("custom constraint delete: %w", schema.ErrUnsupported)
		}
		i := t.constraint(name)
		if i < 0 {
			return fmt.Errorf("constraint %s on %s: %w", name, t.qualified(), schema.ErrNotFound)
		}
		t.Constraints = append(t.Constraints[:i], t.Constraints[i+1:]...)
	}

	for _, name := range s.DeleteFields {
		i := t.field(name.String())
		if i < 0 {
			return fmt.Errorf("field %s.%s: %w", t.qualified(), name, schema.ErrNotFound)
		}
		t.Fields = append(t.Fields[:i], t.Fields[i+1:]...)
	}

	for n, con := range s.CreateConstraints {
		name := con.Identifier(t.qualified())
		if name == "" {
			name = fmt.Sprintf("custom_%s_%d", t.Name, len(t.Constraints)+n)
		}
		if t.constraint(name) >= 0 {
			return fmt.Errorf("constraint %s on %s: %w", name, t.qualified(), schema.ErrExists)
		}
		if err := c.checkAlgorithm(t, con.Algorithm); err != nil {
			return err
		}
		t.Constraints = append(t.Constraints, NamedConstraint{Name: name, Algorithm: con.Algorithm})
	}
	return nil
}

func (c *Catalog) checkAlgorithm(t *Table, a schema.ConstraintAlgorithm) error {
	var local []schema.FieldName
	switch a := a.(type) {
	case schema.Unique:
		local = a.Fields
	case schema.CompositeIdentifier:
		local = a.Fields
	case schema.ForeignKey:
		local = a.Fields
		if err := c.checkReference(t, a.Space, a.Schema, a.ForeignFields); err != nil {
			return err
		}
	}
	for _, f := range local {
		if t.field(f.String()) < 0 {
			return fmt.Errorf("constraint field %s.%s: %w", t.qualified(), f, schema.ErrNotFound)
		}
	}
	return nil
}

// checkReference requires the referenced table and fields to exist. A table
// may reference itself before it is stored.
func (c *Catalog) checkReference(t *Table, space, name string, fields []schema.FieldName) error {
	target := t
	if space != t.Space || name != t.Name {
		key := (&schema.Schema{Space: space, Name: name}).Qualified()
		stored, ok := c.tables[key]
		if !ok {
			return fmt.Errorf("referenced table %s: %w", key, schema.ErrNotFound)
		}
		target = stored
	}
	for _, f := range fields {
		if target.field(f.String()) < 0 {
			return fmt.Errorf("referenced field %s.%s: %w", target.qualified(), f, schema.ErrNotFound)
		}
	}
	return nil
}
