package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore reads documents from the "config" collection of a MongoDB database.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects to uri and pings the primary before returning.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(Collection),
	}, nil
}

// Name implements Store.
func (s *MongoStore) Name() string { return "mongo" }

// Fetch implements Store.
func (s *MongoStore) Fetch(ctx context.Context, id string) (map[string]any, error) {
	var doc bson.M
	err := s.collection.FindOne(ctx, bson.M{idField: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s document: %w", Collection, err)
	}

	raw, _ := fromBSON(doc).(map[string]any)
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Put replaces the document with id, inserting it when absent.
func (s *MongoStore) Put(ctx context.Context, id string, doc map[string]any) error {
	stored := cloneMap(doc)
	stored[idField] = id

	_, err := s.collection.ReplaceOne(ctx, bson.M{idField: id}, stored, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s document: %w", Collection, err)
	}
	return nil
}

// Ping implements Store.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// fromBSON converts decoded BSON containers into plain maps and slices so the
// rest of the service only deals with map[string]any.
func fromBSON(value any) any {
	switch v := value.(type) {
	case bson.M:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = fromBSON(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(v))
		for _, elem := range v {
			out[elem.Key] = fromBSON(elem.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = fromBSON(val)
		}
		return out
	case primitive.ObjectID:
		return v.Hex()
	default:
		return v
	}
}
