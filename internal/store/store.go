// Package store defines the persistence contracts behind the public site and
// the office dashboard. Implementations live in the sub-packages.
package store

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
)

// Collection and path names shared by every backend.
const (
	CollectionPrograms   = "programs"
	CollectionEvents     = "events"
	CollectionActivity   = "activity_logs"
	CollectionSiteConfig = "site_config"
	PathGallery          = "gallery"

	// ActivityLimit is how many activity entries a feed reads.
	ActivityLimit = 40
)

var (
	ErrNotFound         = errors.New("store: not found")
	ErrPermissionDenied = errors.New("store: permission denied")
)

// Order is the stable sort a collection is listed in.
type Order struct {
	Field  string // stored document field
	Column string // SQL column
	Desc   bool
}

var (
	ProgramOrder  = Order{Field: "createdAt", Column: "created_at", Desc: true}
	EventOrder    = Order{Field: "date", Column: "date"}
	ActivityOrder = Order{Field: "createdAt", Column: "created_at", Desc: true}
)

// Documents is an ordered collection with backend-assigned ids.
type Documents[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	// Create stores item, sets its id and returns it.
	Create(ctx context.Context, item *T) (string, error)
	// Update overwrites the editable fields of an existing document.
	Update(ctx context.Context, id string, item *T) error
	Delete(ctx context.Context, id string) error
}

// ActivityLog is the append-mostly audit trail.
type ActivityLog interface {
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	Append(ctx context.Context, entry *models.ActivityLog) (string, error)
	Delete(ctx context.Context, id string) error
}

// SiteConfig is the singleton "current" document.
type SiteConfig interface {
	// Get returns (nil, nil) when the document has never been written.
	Get(ctx context.Context) (*models.SiteConfig, error)
	// Merge upserts only the fields set in patch plus updatedAt.
	Merge(ctx context.Context, patch models.SiteConfigPatch, updatedAt int64) error
}

// Gallery is the key-value tree under gallery/<key>.
type Gallery interface {
	// List returns every photo, newest createdAt first.
	List(ctx context.Context) ([]models.GalleryPhoto, error)
	Get(ctx context.Context, key string) (*models.GalleryPhoto, error)
	// Push stores photo under a generated key and returns it.
	Push(ctx context.Context, photo *models.GalleryPhoto) (string, error)
	// Set fully overwrites the record at key.
	Set(ctx context.Context, key string, photo *models.GalleryPhoto) error
	Delete(ctx context.Context, key string) error
}

// Objects is blob storage for uploaded gallery images.
type Objects interface {
	// Upload stores data at path and returns a public URL for it.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Delete removes path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
}

// Backend bundles the stores the app is wired with.
type Backend struct {
	Programs   Documents[models.Program]
	Events     Documents[models.Event]
	Activity   ActivityLog
	SiteConfig SiteConfig
	Gallery    Gallery
	// Objects is nil when photos are only stored inline.
	Objects Objects
}

// SortGallery orders photos newest first, ties broken by key.
func SortGallery(items []models.GalleryPhoto) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].Key < items[j].Key
	})
}

// GalleryObjectPath is where an uploaded gallery image is stored.
func GalleryObjectPath(createdAt int64, filename string) string {
	return PathGallery + "/" + strconv.FormatInt(createdAt, 10) + "-" + filename
}
