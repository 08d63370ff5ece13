package main

import (
	"context"
	"os"
	"time"

	"phonics-coach/internal/config"
	"phonics-coach/internal/database"
	"phonics-coach/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.LogEnv})
	if err != nil {
		panic(err)
	}
	log.Info("index_migration_started")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoDB, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error("mongodb_connect_failed", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Close()

	createIndexes(ctx, mongoDB.Database)

	log.Info("index_migration_completed")
}

func createIndexes(ctx context.Context, db *mongo.Database) {
	// Users indexes
	createIndex(ctx, db, "users", bson.D{{Key: "email", Value: 1}}, &options.IndexOptions{
		Unique: ptrBool(true),
	})

	// Attempts indexes
	createIndex(ctx, db, "attempts", bson.D{{Key: "attemptId", Value: 1}}, &options.IndexOptions{
		Unique: ptrBool(true),
	})
	createIndex(ctx, db, "attempts", bson.D{
		{Key: "userId", Value: 1},
		{Key: "createdAt", Value: -1},
	}, nil)
	createIndex(ctx, db, "attempts", bson.D{
		{Key: "userId", Value: 1},
		{Key: "target", Value: 1},
	}, nil)
}

func createIndex(ctx context.Context, db *mongo.Database, collection string, keys bson.D, opts *options.IndexOptions) {
	indexModel := mongo.IndexModel{
		Keys:    keys,
		Options: opts,
	}

	name, err := db.Collection(collection).Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		logger.L().Warn("index_create_failed", "collection", collection, "error", err)
		return
	}

	logger.L().Info("index_created", "collection", collection, "index", name)
}

func ptrBool(b bool) *bool {
	return &b
}
