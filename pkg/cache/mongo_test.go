package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Set NODEGRAPH_TEST_MONGO_URI to run these against a real server.
func newMongo(t *testing.T) *MongoCache {
	t.Helper()
	uri := os.Getenv("NODEGRAPH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("NODEGRAPH_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := NewMongoCache(ctx, MongoConfig{
		URI:        uri,
		Database:   "nodegraph_test",
		Collection: "cache_" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.coll.Drop(context.Background())
		c.Close()
	})
	return c
}

func TestMongoCache(t *testing.T) {
	ctx := context.Background()
	c := newMongo(t)

	if _, hit, err := c.Get(ctx, "output:a"); hit || err != nil {
		t.Fatalf("Get on empty cache = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "output:a", []byte("one"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "output:a", []byte("two"), 0); err != nil {
		t.Fatalf("Set (replace): %v", err)
	}
	data, hit, err := c.Get(ctx, "output:a")
	if err != nil || !hit || string(data) != "two" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "output:b", []byte("x"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "output:b"); hit {
		t.Error("expired entry returned")
	}

	if err := Clear(ctx, c); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "output:a"); hit {
		t.Error("entry survived Clear")
	}
}
