// Package mongotest connects repository tests to a real MongoDB.
// Tests are skipped unless MONGO_TEST_URI is set.
package mongotest

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"equiprent/pkg/client"
	"equiprent/pkg/config"
	"equiprent/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EnvMongoTestURI   = "MONGO_TEST_URI"
	connectionTimeout = 10 * time.Second
	cleanupTimeout    = 10 * time.Second
)

// Config returns a config backed by a throwaway database that is dropped when the test ends.
func Config(t *testing.T) *config.Config {
	t.Helper()

	uri := os.Getenv(EnvMongoTestURI)
	if uri == "" {
		t.Skipf("%s not set, skipping MongoDB test", EnvMongoTestURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := "equiprent_test_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := mongoClient.Database(dbName).Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database %s: %v", dbName, err)
		}
		if err := mongoClient.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	return &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Location:          time.UTC,
		Log:               logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
		Client:            &client.Client{Mongo: mongoClient},
	}
}
