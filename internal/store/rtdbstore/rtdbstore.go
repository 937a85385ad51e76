// Package rtdbstore keeps the gallery in Firebase Realtime Database under
// gallery/<key>.
package rtdbstore

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/errorutils"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// record is the stored shape; the key lives in the path, not the value.
type record struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image,omitempty"`
	StoragePath string `json:"storagePath,omitempty"`
	URL         string `json:"url,omitempty"`
	Size        int64  `json:"size,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt,omitempty"`
}

func toRecord(p *models.GalleryPhoto) record {
	return record{
		Title:       p.Title,
		Link:        p.Link,
		Image:       p.Image,
		StoragePath: p.StoragePath,
		URL:         p.URL,
		Size:        p.Size,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r record) photo(key string) models.GalleryPhoto {
	return models.GalleryPhoto{
		Key:         key,
		Title:       r.Title,
		Link:        r.Link,
		Image:       r.Image,
		StoragePath: r.StoragePath,
		URL:         r.URL,
		Size:        r.Size,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errorutils.IsPermissionDenied(err), errorutils.IsUnauthenticated(err):
		return fmt.Errorf("%s: %w: %v", op, store.ErrPermissionDenied, err)
	case errorutils.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Gallery implements store.Gallery on a database reference.
type Gallery struct {
	ref *db.Ref
}

func NewGallery(client *db.Client) *Gallery {
	return &Gallery{ref: client.NewRef(store.PathGallery)}
}

func (g *Gallery) List(ctx context.Context) ([]models.GalleryPhoto, error) {
	var raw map[string]record
	if err := g.ref.Get(ctx, &raw); err != nil {
		return nil, mapError("list gallery", err)
	}
	out := make([]models.GalleryPhoto, 0, len(raw))
	for key, r := range raw {
		out = append(out, r.photo(key))
	}
	store.SortGallery(out)
	return out, nil
}

func (g *Gallery) Get(ctx context.Context, key string) (*models.GalleryPhoto, error) {
	var r *record
	if err := g.ref.Child(key).Get(ctx, &r); err != nil {
		return nil, mapError("get gallery/"+key, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: gallery/%s", store.ErrNotFound, key)
	}
	p := r.photo(key)
	return &p, nil
}

func (g *Gallery) Push(ctx context.Context, photo *models.GalleryPhoto) (string, error) {
	child, err := g.ref.Push(ctx, toRecord(photo))
	if err != nil {
		return "", mapError("push gallery", err)
	}
	photo.Key = child.Key
	return child.Key, nil
}

func (g *Gallery) Set(ctx context.Context, key string, photo *models.GalleryPhoto) error {
	return mapError("set gallery/"+key, g.ref.Child(key).Set(ctx, toRecord(photo)))
}

func (g *Gallery) Delete(ctx context.Context, key string) error {
	return mapError("delete gallery/"+key, g.ref.Child(key).Delete(ctx))
}
