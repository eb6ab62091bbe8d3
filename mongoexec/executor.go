// Package mongoexec applies schema descriptors to MongoDB. Tables are
// collections, fields become a $jsonSchema validator and unique constraints
// become unique indexes. The space selects the database.
package mongoexec

import (
	"context"
	"errors"
	"fmt"

	"github.com/tinywasm/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const codeIndexNotFound = 27

// Executor implements schema.Executor on a MongoDB database.
type Executor struct {
	db  *mongo.Database
	log *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// New wraps db, the database used for schemas without a space.
func New(db *mongo.Database, opts ...Option) *Executor {
	e := &Executor{db: db, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) database(space string) *mongo.Database {
	if space == "" {
		return e.db
	}
	return e.db.Client().Database(space)
}

// Execute applies s. MongoDB has no transactional DDL, so a create whose
// indexes fail drops the collection it just made.
func (e *Executor) Execute(ctx context.Context, s *schema.Schema) error {
	if err := schema.Check(s); err != nil {
		return err
	}
	db := e.database(s.Space)
	log := e.log.With(zap.String("collection", s.Qualified()), zap.Stringer("action", s.Action))

	spec, err := e.spec(ctx, db, s.Name)
	if err != nil {
		return err
	}

	switch s.Action {
	case schema.ActionCreate:
		if spec != nil {
			if s.ExclusiveCreate {
				return fmt.Errorf("collection %s: %w", s.Qualified(), schema.ErrExists)
			}
			log.Debug("collection exists, create skipped")
			return nil
		}
		return e.create(ctx, db, s)
	case schema.ActionUpdate:
		if spec == nil {
			return fmt.Errorf("collection %s: %w", s.Qualified(), schema.ErrNotFound)
		}
		return e.update(ctx, db, spec, s)
	default:
		if spec == nil {
			return fmt.Errorf("collection %s: %w", s.Qualified(), schema.ErrNotFound)
		}
		return db.Collection(s.Name).Drop(ctx)
	}
}

func (e *Executor) spec(ctx context.Context, db *mongo.Database, name string) (*mongo.CollectionSpecification, error) {
	specs, err := db.ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if len(specs) == 0 {
		return nil, nil
	}
	return specs[0], nil
}

func (e *Executor) create(ctx context.Context, db *mongo.Database, s *schema.Schema) error {
	if len(s.UpdateFields) > 0 || len(s.DeleteFields) > 0 || len(s.DeleteConstraints) > 0 {
		return fmt.Errorf("create of %s with field updates or deletes: %w", s.Qualified(), schema.ErrUnsupported)
	}
	validator := newJSONSchema()
	if err := validator.apply(s); err != nil {
		return err
	}
	models, err := IndexModels(s.Qualified(), s.CreateConstraints)
	if err != nil {
		return err
	}

	opts := options.CreateCollection()
	if len(validator.Properties) > 0 {
		opts.SetValidator(bson.D{{Key: "$jsonSchema", Value: validator}})
	}
	if err := db.CreateCollection(ctx, s.Name, opts); err != nil {
		return fmt.Errorf("create collection %s: %w", s.Qualified(), err)
	}

	if len(models) > 0 {
		if _, err := db.Collection(s.Name).Indexes().CreateMany(ctx, models); err != nil {
			if dropErr := db.Collection(s.Name).Drop(ctx); dropErr != nil {
				e.log.Warn("drop after failed create", zap.String("collection", s.Qualified()), zap.Error(dropErr))
			}
			return fmt.Errorf("create indexes on %s: %w", s.Qualified(), err)
		}
	}
	return nil
}

func (e *Executor) update(ctx context.Context, db *mongo.Database, spec *mongo.CollectionSpecification, s *schema.Schema) error {
	validator, err := currentValidator(spec)
	if err != nil {
		return err
	}
	if err := validator.apply(s); err != nil {
		return err
	}
	models, err := IndexModels(s.Qualified(), s.CreateConstraints)
	if err != nil {
		return err
	}

	if len(s.CreateFields)+len(s.UpdateFields)+len(s.DeleteFields) > 0 {
		cmd := bson.D{
			{Key: "collMod", Value: s.Name},
			{Key: "validator", Value: bson.D{{Key: "$jsonSchema", Value: validator}}},
		}
		if err := db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("collMod %s: %w", s.Qualified(), err)
		}
	}

	indexes := db.Collection(s.Name).Indexes()
	for _, d := range s.DeleteConstraints {
		name := schema.DeleteIdentifier(s.Qualified(), d)
		if name == "" {
			return fmt.Errorf("custom constraint delete: %w", schema.ErrUnsupported)
		}
		if _, err := indexes.DropOne(ctx, name); err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Code == codeIndexNotFound {
				return fmt.Errorf("index %s on %s: %w: %w", name, s.Qualified(), schema.ErrNotFound, err)
			}
			return fmt.Errorf("drop index %s: %w", name, err)
		}
	}

	if len(models) > 0 {
		if _, err := indexes.CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", s.Qualified(), err)
		}
	}
	return nil
}

// currentValidator decodes the collection's $jsonSchema, or returns an
// empty one when the collection has no validator.
func currentValidator(spec *mongo.CollectionSpecification) (*JSONSchema, error) {
	var opts struct {
		Validator struct {
			JSONSchema *JSONSchema `bson:"$jsonSchema"`
		} `bson:"validator"`
	}
	if len(spec.Options) > 0 {
		if err := bson.Unmarshal(spec.Options, &opts); err != nil {
			return nil, fmt.Errorf("decode validator of %s: %w", spec.Name, err)
		}
	}
	if opts.Validator.JSONSchema == nil {
		return newJSONSchema(), nil
	}
	return opts.Validator.JSONSchema, nil
}
