package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"interview-memory-service/internal/config"
	"interview-memory-service/internal/models"
)

// MongoStore is a Store backed by a MongoDB Atlas collection with a vector
// index over the embedding field.
type MongoStore struct {
	client      *mongo.Client
	collection  *mongo.Collection
	vectorIndex string
}

// Connect opens and pings a MongoDB client. The client is a single shared
// handle, opened once at process start and reused by all requests.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}
	return client, nil
}

// NewMongoStore creates a store over the configured collection.
func NewMongoStore(client *mongo.Client, cfg config.MongoConfig) *MongoStore {
	return &MongoStore{
		client:      client,
		collection:  client.Database(cfg.Database).Collection(cfg.Collection),
		vectorIndex: cfg.VectorIndex,
	}
}

// Insert appends a memory record.
func (s *MongoStore) Insert(ctx context.Context, memory models.Memory) error {
	if _, err := s.collection.InsertOne(ctx, memory); err != nil {
		return fmt.Errorf("inserting memory: %w", err)
	}
	return nil
}

// VectorSearch runs a $vectorSearch aggregation over the embedding field,
// projecting the display fields plus the similarity score.
func (s *MongoStore) VectorSearch(ctx context.Context, vector []float32, limit, numCandidates int) ([]models.SearchResult, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.vectorIndex},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: numCandidates},
			{Key: "limit", Value: limit},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "classification", Value: 1},
			{Key: "description", Value: 1},
			{Key: "sourceFile", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.SearchResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return results, nil
}

// HealthCheck verifies the datastore connection.
func (s *MongoStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
