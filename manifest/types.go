package manifest

import (
	"fmt"
	"strings"

	"github.com/tinywasm/schema"
)

// ParseDataType reads a type expression:
//
//	string, int64, uuid, ...   scalar kinds
//	[]T                        array of T
//	map[string]T               dictionary of T
//	enum:status(open|closed)   named enum
//	sql:VARCHAR(32)            backend type, passed through
func ParseDataType(s string) (schema.DataType, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type: %w", schema.ErrValidation)
	case strings.HasPrefix(s, "[]"):
		of, err := ParseDataType(s[2:])
		if err != nil {
			return nil, err
		}
		return schema.Array{Of: of}, nil
	case strings.HasPrefix(s, "map[string]"):
		of, err := ParseDataType(s[len("map[string]"):])
		if err != nil {
			return nil, err
		}
		return schema.Dictionary{Of: of}, nil
	case strings.HasPrefix(s, "enum:"):
		return parseEnum(s[len("enum:"):])
	case strings.HasPrefix(s, "sql:"):
		raw := strings.TrimSpace(s[len("sql:"):])
		if raw == "" {
			return nil, fmt.Errorf("type %q: %w", s, schema.ErrValidation)
		}
		return schema.CustomType(raw), nil
	}

	if k, ok := schema.KindByName(s); ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown type %q: %w", s, schema.ErrValidation)
}

func parseEnum(s string) (schema.DataType, error) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("enum %q: want name(a|b): %w", s, schema.ErrValidation)
	}
	var cases []string
	for _, c := range strings.Split(s[open+1:len(s)-1], "|") {
		if c = strings.TrimSpace(c); c != "" {
			cases = append(cases, c)
		}
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("enum %q has no cases: %w", s, schema.ErrValidation)
	}
	return schema.Enum{Name: s[:open], Cases: cases}, nil
}

// ParseAction reads a foreign-key action as ForeignKeyAction.String spells
// it. Spaces and dashes are accepted in place of underscores.
func ParseAction(s string) (schema.ForeignKeyAction, error) {
	norm := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	if norm == "" {
		return schema.NoAction, nil
	}
	for _, a := range []schema.ForeignKeyAction{
		schema.NoAction, schema.Restrict, schema.Cascade, schema.SetNull, schema.SetDefault,
	} {
		if a.String() == norm {
			return a, nil
		}
	}
	return schema.NoAction, fmt.Errorf("foreign key action %q: %w", s, schema.ErrValidation)
}
