// Package redisstore keeps the gallery in a Redis hash, one JSON value per
// key. It is the self-hosted alternative to Realtime Database.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

type Gallery struct {
	rdb *redis.Client
	key string
}

func NewGallery(rdb *redis.Client) *Gallery {
	return &Gallery{rdb: rdb, key: rdb.Key(store.PathGallery)}
}

func (g *Gallery) List(ctx context.Context) ([]models.GalleryPhoto, error) {
	raw, err := g.rdb.Raw().HGetAll(ctx, g.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	out := make([]models.GalleryPhoto, 0, len(raw))
	for key, value := range raw {
		var p models.GalleryPhoto
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			return nil, fmt.Errorf("decode gallery/%s: %w", key, err)
		}
		p.Key = key
		out = append(out, p)
	}
	store.SortGallery(out)
	return out, nil
}

func (g *Gallery) Get(ctx context.Context, key string) (*models.GalleryPhoto, error) {
	value, err := g.rdb.Raw().HGet(ctx, g.key, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: gallery/%s", store.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get gallery/%s: %w", key, err)
	}
	var p models.GalleryPhoto
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return nil, fmt.Errorf("decode gallery/%s: %w", key, err)
	}
	p.Key = key
	return &p, nil
}

// Push stores photo under a time-ordered UUIDv7 key.
func (g *Gallery) Push(ctx context.Context, photo *models.GalleryPhoto) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	photo.Key = id.String()
	if err := g.Set(ctx, photo.Key, photo); err != nil {
		return "", err
	}
	return photo.Key, nil
}

func (g *Gallery) Set(ctx context.Context, key string, photo *models.GalleryPhoto) error {
	next := *photo
	next.Key = ""
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := g.rdb.Raw().HSet(ctx, g.key, key, data).Err(); err != nil {
		return fmt.Errorf("set gallery/%s: %w", key, err)
	}
	return nil
}

func (g *Gallery) Delete(ctx context.Context, key string) error {
	if err := g.rdb.Raw().HDel(ctx, g.key, key).Err(); err != nil {
		return fmt.Errorf("delete gallery/%s: %w", key, err)
	}
	return nil
}
