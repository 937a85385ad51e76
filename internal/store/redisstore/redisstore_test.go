package redisstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// Needs a live server: CHURCH_TEST_REDIS_URL=redis://localhost:6379/15
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("CHURCH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CHURCH_TEST_REDIS_URL not set")
	}
	rdb, err := redis.Connect(url, "test-"+uuid.NewString())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), rdb.Key(store.PathGallery))
		_ = rdb.Close()
	})
	return rdb
}

func TestGalleryHash(t *testing.T) {
	ctx := context.Background()
	g := NewGallery(testClient(t))

	older := &models.GalleryPhoto{Title: "Older", Link: "https://a", CreatedAt: 1}
	key, err := g.Push(ctx, older)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := g.Push(ctx, &models.GalleryPhoto{Title: "Newer", Image: "aGk=", CreatedAt: 2}); err != nil {
		t.Fatal(err)
	}

	items, err := g.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Title != "Newer" || items[1].Key != key {
		t.Fatalf("List: %+v", items)
	}

	if err := g.Set(ctx, key, &models.GalleryPhoto{Title: "Edited", Link: "https://a", CreatedAt: 1, UpdatedAt: 3}); err != nil {
		t.Fatal(err)
	}
	got, err := g.Get(ctx, key)
	if err != nil || got.Title != "Edited" || got.UpdatedAt != 3 {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := g.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Get(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get deleted = %v", err)
	}
}
