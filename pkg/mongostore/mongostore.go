// Package mongostore keeps vehicle records in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/WessleyAI/lotscraper/engine/vehicle"
)

// Collection is where vehicle records live.
const Collection = "vehicles"

// Store reads and writes the vehicles collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri, checks the server is reachable and opens db's vehicles
// collection.
func Connect(ctx context.Context, uri, db string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := New(client.Database(db).Collection(Collection))
	s.client = client
	return s, nil
}

// New wraps an existing collection. Close is a no-op for such stores.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// EnsureIndexes creates the source_url lookup index if it is missing. The
// index is not unique so collections holding older duplicates still work.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "source_url", Value: 1}},
		Options: options.Index().SetName("source_url_1"),
	})
	if err != nil {
		return fmt.Errorf("create source_url index: %w", err)
	}
	return nil
}

// ExistsBySourceURL reports whether a record for url is stored.
func (s *Store) ExistsBySourceURL(ctx context.Context, url string) (bool, error) {
	err := s.coll.FindOne(ctx,
		bson.D{{Key: "source_url", Value: url}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("find %s: %w", url, err)
	}
	return true, nil
}

// Insert writes rec as a new document.
func (s *Store) Insert(ctx context.Context, rec *vehicle.Record) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert %s: %w", rec.SourceURL, err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", Collection, err)
	}
	return n, nil
}

// Close disconnects the client opened by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
