package mongoexec

import (
	"fmt"

	"github.com/tinywasm/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexModels maps unique and composite-identifier constraints to unique
// indexes. MongoDB has no foreign keys.
func IndexModels(table string, constraints []schema.Constraint) ([]mongo.IndexModel, error) {
	models := make([]mongo.IndexModel, 0, len(constraints))
	for _, c := range constraints {
		var fields []schema.FieldName
		switch a := c.Algorithm.(type) {
		case schema.Unique:
			fields = a.Fields
		case schema.CompositeIdentifier:
			fields = a.Fields
		default:
			return nil, fmt.Errorf("constraint %T on %s: %w", c.Algorithm, table, schema.ErrUnsupported)
		}

		keys := bson.D{}
		for _, f := range fields {
			keys = append(keys, bson.E{Key: f.String(), Value: 1})
		}
		models = append(models, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true).SetName(c.Identifier(table)),
		})
	}
	return models, nil
}
