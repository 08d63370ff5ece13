//go:build api

// Package testdb starts the backing stores for API tests in containers.
package testdb

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const startTimeout = 2 * time.Minute

// practiceCollections are emptied between tests. Their indexes stay.
var practiceCollections = []string{"users", "attempts"}

// Mongo is a throwaway MongoDB holding parent accounts and the attempt
// archive.
type Mongo struct {
	Container *mongodb.MongoDBContainer
	Client    *mongo.Client
	Database  *mongo.Database
}

// StartMongo runs mongo:7 and creates the indexes the server relies on,
// most importantly the unique parent email.
func StartMongo(ctx context.Context, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, fmt.Errorf("start mongo: %w", err)
	}
	m := &Mongo{Container: container}

	uri, err := container.ConnectionString(ctx)
	if err == nil {
		m.Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	}
	if err == nil {
		err = m.Client.Ping(ctx, nil)
	}
	if err != nil {
		_ = m.Close(context.Background())
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	m.Database = m.Client.Database(dbName)
	if err := m.createIndexes(ctx); err != nil {
		_ = m.Close(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string]mongo.IndexModel{
		"users":    {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		"attempts": {Keys: bson.D{{Key: "attemptId", Value: 1}}, Options: unique},
	}
	for coll, model := range indexes {
		if _, err := m.Database.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s: %w", coll, err)
		}
	}
	return nil
}

// Truncate removes every parent and archived attempt.
func (m *Mongo) Truncate(ctx context.Context) error {
	for _, coll := range practiceCollections {
		if _, err := m.Database.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("truncate %s: %w", coll, err)
		}
	}
	return nil
}

// CountAttempts returns how many attempts are archived for a parent.
func (m *Mongo) CountAttempts(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return m.Database.Collection("attempts").CountDocuments(ctx, bson.M{"userId": userID})
}

// Close disconnects and removes the container.
func (m *Mongo) Close(ctx context.Context) error {
	if m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
	return m.Container.Terminate(ctx)
}
