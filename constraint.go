package schema

import (
	"strings"

	"github.com/google/uuid"
)

// ForeignKeyAction is what the backend does to referencing rows when the
// referenced row is deleted or updated.
type ForeignKeyAction int

const (
	NoAction ForeignKeyAction = iota
	Restrict
	Cascade
	SetNull
	SetDefault
)

func (a ForeignKeyAction) String() string {
	switch a {
	case Restrict:
		return "restrict"
	case Cascade:
		return "cascade"
	case SetNull:
		return "set_null"
	case SetDefault:
		return "set_default"
	default:
		return "no_action"
	}
}

// ConstraintAlgorithm is the rule a Constraint enforces:
// Unique, CompositeIdentifier, ForeignKey or CustomConstraint.
type ConstraintAlgorithm interface {
	isConstraintAlgorithm()
}

// Unique requires the combination of Fields to be unique.
type Unique struct {
	Fields []FieldName
}

// CompositeIdentifier makes the ordered Fields the primary identifier.
type CompositeIdentifier struct {
	Fields []FieldName
}

// ForeignKey links Fields to ForeignFields of Schema positionally.
type ForeignKey struct {
	Fields        []FieldName
	Schema        string
	Space         string
	ForeignFields []FieldName
	OnDelete      ForeignKeyAction
	OnUpdate      ForeignKeyAction
}

// CustomConstraint is passed to the backend verbatim.
type CustomConstraint string

func (Unique) isConstraintAlgorithm()              {}
func (CompositeIdentifier) isConstraintAlgorithm() {}
func (ForeignKey) isConstraintAlgorithm()          {}
func (CustomConstraint) isConstraintAlgorithm()    {}

// Constraint is a table-level rule. An empty Name leaves naming to the executor.
type Constraint struct {
	Algorithm ConstraintAlgorithm
	Name      string
}

// Identifier returns Name, or the name DeriveName gives the algorithm.
func (c Constraint) Identifier(table string) string {
	if c.Name != "" {
		return c.Name
	}
	return DeriveName(table, c.Algorithm)
}

// ConstraintDelete removes a constraint: DropConstraint, DropName or
// CustomConstraintDelete.
type ConstraintDelete interface {
	isConstraintDelete()
}

// DropConstraint removes the constraint DeriveName would give Algorithm.
type DropConstraint struct {
	Algorithm ConstraintAlgorithm
}

// DropName removes a constraint by its name.
type DropName string

// CustomConstraintDelete is passed to the backend verbatim.
type CustomConstraintDelete string

func (DropConstraint) isConstraintDelete()         {}
func (DropName) isConstraintDelete()               {}
func (CustomConstraintDelete) isConstraintDelete() {}

// DeleteIdentifier returns the constraint name d addresses, or "" for a
// custom delete.
func DeleteIdentifier(table string, d ConstraintDelete) string {
	switch d := d.(type) {
	case DropName:
		return string(d)
	case DropConstraint:
		return DeriveName(table, d.Algorithm)
	default:
		return ""
	}
}

// MaxNameLength is the longest derived name; PostgreSQL truncates at 63.
const MaxNameLength = 63

// DeriveName builds a deterministic constraint name for an unnamed
// constraint on table: prefix, table and fields joined by "_". When the
// table or a field contains "_" or "." that join can be read more than one
// way, so the name gets a "__" and a digest of the exact parts. Names longer
// than MaxNameLength are replaced by the digest. Custom constraints derive "".
func DeriveName(table string, a ConstraintAlgorithm) string {
	var prefix string
	var fields []FieldName
	switch a := a.(type) {
	case Unique:
		prefix, fields = "uq", a.Fields
	case CompositeIdentifier:
		prefix = "pk"
	case ForeignKey:
		prefix, fields = "fk", a.Fields
	default:
		return ""
	}

	parts := []string{prefix, strings.ReplaceAll(table, ".", "_")}
	key := []string{prefix, table}
	ambiguous := strings.ContainsAny(table, "_.")
	for _, f := range fields {
		name := f.String()
		parts = append(parts, name)
		key = append(key, name)
		if strings.ContainsAny(name, "_.") {
			ambiguous = true
		}
	}

	sum := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(key, "\x00")))
	digest := strings.ReplaceAll(sum.String(), "-", "")

	name := strings.Join(parts, "_")
	if ambiguous {
		name += "__" + digest[:8]
	}
	if len(name) <= MaxNameLength {
		return name
	}
	return prefix + "_" + digest
}
