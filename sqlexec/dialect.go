package sqlexec

import (
	"github.com/tinywasm/schema"
)

// DialectName identifies a SQL dialect.
type DialectName string

const (
	DialectSQLite   DialectName = "sqlite"
	DialectPostgres DialectName = "postgres"
)

// Dialect describes how a dialect spells DDL.
type Dialect struct {
	Name  DialectName
	Quote string
	// Types maps scalar kinds to column types.
	Types map[schema.DataKind]string
	// ArrayType wraps the element type of an array column. Nil stores arrays as DictionaryType.
	ArrayType      func(inner string) string
	DictionaryType string
	EnumType       string
	// AutoIdentifier is appended to an auto-generated identifier column.
	// AutoIdentifierType, when set, replaces the column type.
	AutoIdentifier     string
	AutoIdentifierType string
	// AlterTypeTemplate takes table, column and type. Empty means the
	// dialect cannot retype columns.
	AlterTypeTemplate string
	// IndexConstraints adds and drops unique constraints on existing tables
	// as named unique indexes.
	IndexConstraints bool
}

// DialectConfigFor returns the Dialect for d. Unknown names get SQLite.
func DialectConfigFor(d DialectName) Dialect {
	switch d {
	case DialectPostgres:
		return Dialect{
			Name:  DialectPostgres,
			Quote: `"`,
			Types: map[schema.DataKind]string{
				schema.TypeBool:     "BOOLEAN",
				schema.TypeInt8:     "SMALLINT",
				schema.TypeInt16:    "SMALLINT",
				schema.TypeInt32:    "INTEGER",
				schema.TypeInt64:    "BIGINT",
				schema.TypeUint8:    "SMALLINT",
				schema.TypeUint16:   "INTEGER",
				schema.TypeUint32:   "BIGINT",
				schema.TypeUint64:   "NUMERIC(20)",
				schema.TypeString:   "TEXT",
				schema.TypeTime:     "TIME",
				schema.TypeDate:     "DATE",
				schema.TypeDatetime: "TIMESTAMPTZ",
				schema.TypeFloat:    "REAL",
				schema.TypeDouble:   "DOUBLE PRECISION",
				schema.TypeData:     "BYTEA",
				schema.TypeUUID:     "UUID",
				schema.TypeJSON:     "JSONB",
			},
			ArrayType: func(inner string) string {
				return inner + "[]"
			},
			DictionaryType:    "JSONB",
			EnumType:          "TEXT",
			AutoIdentifier:    "GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY",
			AlterTypeTemplate: "ALTER TABLE %s ALTER COLUMN %s SET DATA TYPE %s",
		}
	default:
		return Dialect{
			Name:  DialectSQLite,
			Quote: `"`,
			Types: map[schema.DataKind]string{
				schema.TypeBool:     "BOOLEAN",
				schema.TypeInt8:     "INTEGER",
				schema.TypeInt16:    "INTEGER",
				schema.TypeInt32:    "INTEGER",
				schema.TypeInt64:    "INTEGER",
				schema.TypeUint8:    "INTEGER",
				schema.TypeUint16:   "INTEGER",
				schema.TypeUint32:   "INTEGER",
				schema.TypeUint64:   "INTEGER",
				schema.TypeString:   "TEXT",
				schema.TypeTime:     "TEXT",
				schema.TypeDate:     "TEXT",
				schema.TypeDatetime: "TEXT",
				schema.TypeFloat:    "REAL",
				schema.TypeDouble:   "REAL",
				schema.TypeData:     "BLOB",
				schema.TypeUUID:     "TEXT",
				schema.TypeJSON:     "TEXT",
			},
			DictionaryType:     "TEXT",
			EnumType:           "TEXT",
			AutoIdentifier:     "PRIMARY KEY AUTOINCREMENT",
			AutoIdentifierType: "INTEGER",
			IndexConstraints:   true,
		}
	}
}
