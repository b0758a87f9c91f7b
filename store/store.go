package store

import (
	"context"
	"errors"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// docRegistry decodes embedded documents as bson.M instead of the ordered
// bson.D default, so nested fields stay addressable by key throughout the
// normalizer and projector.
var docRegistry = newDocRegistry()

func newDocRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeMapEntry(bson.TypeEmbeddedDocument, reflect.TypeOf(bson.M{}))
	return reg
}

// FindOptions carries the window and ordering of a Find call.
type FindOptions struct {
	Skip  int64
	Limit int64
	Sort  bson.D
}

// Collection exposes the raw CRUD primitives the workflows need. The mongo
// implementation is the real thing; tests substitute the in-memory one.
type Collection interface {
	InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error)
	// FindByID accepts either an ObjectID hex string or a plain string id;
	// it tries the ObjectID form first and falls back to a raw string match.
	FindByID(ctx context.Context, id string) (bson.M, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	// UpdateByID applies a mongo update document ($set, $inc, $addToSet).
	UpdateByID(ctx context.Context, id interface{}, update bson.M) error
	Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error)
}

// Store holds the typed collection handles of the course database.
type Store struct {
	client *mongo.Client

	Courses     Collection
	Modules     Collection
	Topics      Collection
	Contents    Collection
	Enrollments Collection
}

// Connect opens a mongo client and binds the five collections.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName, options.Database().SetRegistry(docRegistry))
	return &Store{
		client:      client,
		Courses:     &mongoCollection{db.Collection("courses")},
		Modules:     &mongoCollection{db.Collection("modules")},
		Topics:      &mongoCollection{db.Collection("topics")},
		Contents:    &mongoCollection{db.Collection("contents")},
		Enrollments: &mongoCollection{db.Collection("enrollments")},
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	res, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, nil
	}
	return id, nil
}

func (m *mongoCollection) FindByID(ctx context.Context, id string) (bson.M, error) {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		doc, err := m.FindOne(ctx, bson.M{"_id": oid})
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	// Legacy documents may carry plain string ids.
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *mongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := m.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *mongoCollection) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	fo := options.Find()
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if len(opts.Sort) > 0 {
		fo.SetSort(opts.Sort)
	}

	cursor, err := m.coll.Find(ctx, filter, fo)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *mongoCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	return m.coll.CountDocuments(ctx, filter)
}

func (m *mongoCollection) UpdateByID(ctx context.Context, id interface{}, update bson.M) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoCollection) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
