package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestDB is a throwaway MongoDB container and database.
type TestDB struct {
	Container *mongodb.MongoDBContainer
	Client    *mongo.Client
	Database  *mongo.Database
}

// SetupTestDB starts mongo:7.0 and connects to a uniquely named database.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7.0")
	require.NoError(t, err, "start MongoDB container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "container connection string")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err, "connect to MongoDB")
	require.NoError(t, client.Ping(ctx, nil), "ping MongoDB")

	db := client.Database("test_" + time.Now().Format("20060102150405"))

	// the users repository relies on this index for concurrent registrations
	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	require.NoError(t, err)

	return &TestDB{Container: container, Client: client, Database: db}
}

func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tdb.Database != nil {
		_ = tdb.Database.Drop(ctx)
	}
	if tdb.Client != nil {
		_ = tdb.Client.Disconnect(ctx)
	}
	if tdb.Container != nil {
		_ = tdb.Container.Terminate(ctx)
	}
}

// ClearCollection removes every document from name.
func (tdb *TestDB) ClearCollection(t *testing.T, name string) {
	t.Helper()
	_, err := tdb.Database.Collection(name).DeleteMany(context.Background(), bson.M{})
	require.NoError(t, err, "clear collection %s", name)
}
