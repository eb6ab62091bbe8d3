package mongoexec

import (
	"fmt"

	"github.com/tinywasm/schema"
)

// JSONSchema is the subset of MongoDB's $jsonSchema a descriptor maps onto.
type JSONSchema struct {
	BSONType   string              `bson:"bsonType"`
	Required   []string            `bson:"required,omitempty"`
	Properties map[string]Property `bson:"properties,omitempty"`
}

// Property validates one document field.
type Property struct {
	BSONType string    `bson:"bsonType,omitempty"`
	Enum     []string  `bson:"enum,omitempty"`
	Items    *Property `bson:"items,omitempty"`
}

func newJSONSchema() *JSONSchema {
	return &JSONSchema{BSONType: "object", Properties: map[string]Property{}}
}

func (j *JSONSchema) required(name string) bool {
	for _, r := range j.Required {
		if r == name {
			return true
		}
	}
	return false
}

// apply adds, retypes and removes properties the way s describes.
func (j *JSONSchema) apply(s *schema.Schema) error {
	if j.Properties == nil {
		j.Properties = map[string]Property{}
	}

	for _, f := range s.CreateFields {
		name := f.Name.String()
		if _, ok := j.Properties[name]; ok {
			return fmt.Errorf("field %s.%s: %w", s.Qualified(), name, schema.ErrExists)
		}
		p, err := property(f.DataType)
		if err != nil {
			return err
		}
		j.Properties[name] = p
		for _, c := range f.Constraints {
			switch c.(type) {
			case schema.Required, schema.Identifier:
				if !j.required(name) {
					j.Required = append(j.Required, name)
				}
			case schema.References:
				return fmt.Errorf("reference on %s.%s: %w", s.Qualified(), name, schema.ErrUnsupported)
			}
		}
	}

	for _, u := range s.UpdateFields {
		name := u.Name.String()
		if _, ok := j.Properties[name]; !ok {
			return fmt.Errorf("field %s.%s: %w", s.Qualified(), name, schema.ErrNotFound)
		}
		p, err := property(u.DataType)
		if err != nil {
			return err
		}
		j.Properties[name] = p
	}

	for _, n := range s.DeleteFields {
		name := n.String()
		if _, ok := j.Properties[name]; !ok {
			return fmt.Errorf("field %s.%s: %w", s.Qualified(), name, schema.ErrNotFound)
		}
		delete(j.Properties, name)
		kept := j.Required[:0]
		for _, r := range j.Required {
			if r != name {
				kept = append(kept, r)
			}
		}
		j.Required = kept
	}
	return nil
}

var bsonTypes = map[schema.DataKind]string{
	schema.TypeBool:     "bool",
	schema.TypeInt8:     "int",
	schema.TypeInt16:    "int",
	schema.TypeInt32:    "int",
	schema.TypeInt64:    "long",
	schema.TypeUint8:    "int",
	schema.TypeUint16:   "int",
	schema.TypeUint32:   "long",
	schema.TypeUint64:   "long",
	schema.TypeString:   "string",
	schema.TypeTime:     "string",
	schema.TypeDate:     "date",
	schema.TypeDatetime: "date",
	schema.TypeFloat:    "double",
	schema.TypeDouble:   "double",
	schema.TypeData:     "binData",
	schema.TypeUUID:     "binData",
	schema.TypeJSON:     "object",
}

func property(t schema.DataType) (Property, error) {
	switch t := t.(type) {
	case schema.DataKind:
		name, ok := bsonTypes[t]
		if !ok {
			return Property{}, fmt.Errorf("type %s: %w", t, schema.ErrUnsupported)
		}
		return Property{BSONType: name}, nil
	case schema.Enum:
		return Property{BSONType: "string", Enum: t.Cases}, nil
	case schema.Array:
		p := Property{BSONType: "array"}
		if t.Of != nil {
			items, err := property(t.Of)
			if err != nil {
				return Property{}, err
			}
			p.Items = &items
		}
		return p, nil
	case schema.Dictionary:
		return Property{BSONType: "object"}, nil
	case schema.CustomType:
		return Property{BSONType: string(t)}, nil
	default:
		return Property{}, fmt.Errorf("type %T: %w", t, schema.ErrUnsupported)
	}
}
