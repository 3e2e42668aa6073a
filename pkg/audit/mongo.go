package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "pipelinecheck"
	DefaultCollection = "checks"
)

// MongoConfig configures a [MongoRecorder].
type MongoConfig struct {
	URI        string
	Database   string // defaults to DefaultDatabase
	Collection string // defaults to DefaultCollection
	TTL        time.Duration
}

// MongoRecorder inserts records into a MongoDB collection.
type MongoRecorder struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoRecorder connects to MongoDB and pings the primary. When cfg.TTL is
// positive a TTL index on the time field expires old records.
func NewMongoRecorder(ctx context.Context, cfg MongoConfig) (*MongoRecorder, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: empty URI")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	if cfg.TTL > 0 {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "time", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(cfg.TTL.Seconds())),
		})
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo create ttl index: %w", err)
		}
	}

	return &MongoRecorder{client: client, coll: coll}, nil
}

// Record inserts rec.
func (r *MongoRecorder) Record(ctx context.Context, rec Record) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (r *MongoRecorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

var _ Recorder = (*MongoRecorder)(nil)
