package tenantstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

// DefaultMongoCollection is the collection used by NewMongoStore.
const DefaultMongoCollection = "tenants"

// Strength 2 ignores case, so "Acme" equals "ACME". Strength 3 tells them apart.
var (
	caseInsensitive = &options.Collation{Locale: "en", Strength: 2}
	caseSensitive   = &options.Collation{Locale: "en", Strength: 3}
)

// MongoStore keeps tenants in a MongoDB collection with a unique index on
// identifier. Lookups are case-insensitive unless WithMongoCaseSensitive is set.
type MongoStore struct {
	coll      *mongo.Collection
	collation *options.Collation
}

// MongoOption configures a MongoStore.
type MongoOption func(*mongoOptions)

type mongoOptions struct {
	collection    string
	caseSensitive bool
}

func WithCollection(name string) MongoOption {
	return func(o *mongoOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// WithMongoCaseSensitive compares identifiers with their case. It picks a
// different index, so switching it on an existing collection adds a second
// unique index rather than replacing the first.
func WithMongoCaseSensitive(enabled bool) MongoOption {
	return func(o *mongoOptions) {
		o.caseSensitive = enabled
	}
}

// NewMongoStore ensures the identifier index exists.
func NewMongoStore(ctx context.Context, db *mongo.Database, opts ...MongoOption) (*MongoStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: mongo database cannot be nil", tenant.ErrValidation)
	}

	o := mongoOptions{collection: DefaultMongoCollection}
	for _, opt := range opts {
		opt(&o)
	}

	collation, index := mongoCollation(o.caseSensitive)

	coll := db.Collection(o.collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "identifier", Value: 1}},
		Options: options.Index().
			SetName(index).
			SetUnique(true).
			SetCollation(collation),
	})
	if err != nil {
		return nil, fmt.Errorf("create tenant identifier index: %w", err)
	}

	return &MongoStore{coll: coll, collation: collation}, nil
}

func mongoCollation(sensitive bool) (*options.Collation, string) {
	if sensitive {
		return caseSensitive, "identifier_unique_cs"
	}
	return caseInsensitive, "identifier_unique"
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Info, error) {
	return s.findOne(ctx, bson.D{{Key: "identifier", Value: identifier}})
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*tenant.Info, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*tenant.Info, error) {
	var info tenant.Info
	err := s.coll.FindOne(ctx, filter, options.FindOne().SetCollation(s.collation)).Decode(&info)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return &info, nil
}

func (s *MongoStore) List(ctx context.Context) ([]*tenant.Info, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "identifier", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	var out []*tenant.Info
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Add(ctx context.Context, info *tenant.Info) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	doc := info.Clone()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTenant, info.Identifier)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, info *tenant.Info) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	if info.ID == "" {
		return fmt.Errorf("%w: tenant id is required for update", tenant.ErrValidation)
	}

	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: info.ID}}, info)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTenant, info.Identifier)
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	if res.MatchedCount == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func (s *MongoStore) Remove(ctx context.Context, identifier string) error {
	res, err := s.coll.DeleteOne(ctx,
		bson.D{{Key: "identifier", Value: identifier}},
		options.DeleteOne().SetCollation(s.collation),
	)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if res.DeletedCount == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
