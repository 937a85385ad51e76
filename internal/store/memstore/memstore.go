// Package memstore keeps every store in process memory. It backs local
// previews without cloud credentials and the handler tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// NewBackend returns a Backend whose stores all live in memory.
func NewBackend() store.Backend {
	return store.Backend{
		Programs:   NewPrograms(),
		Events:     NewEvents(),
		Activity:   NewActivity(),
		SiteConfig: NewSiteConfig(),
		Gallery:    NewGallery(),
		Objects:    NewObjects("memory://objects"),
	}
}

// Documents is an ordered in-memory collection.
type Documents[T any, PT interface {
	*T
	models.Entity
}] struct {
	mu    sync.RWMutex
	items map[string]T
	less  func(a, b *T) bool
}

func newDocuments[T any, PT interface {
	*T
	models.Entity
}](less func(a, b *T) bool) *Documents[T, PT] {
	return &Documents[T, PT]{items: make(map[string]T), less: less}
}

func NewPrograms() *Documents[models.Program, *models.Program] {
	return newDocuments[models.Program](func(a, b *models.Program) bool {
		return a.CreatedAt > b.CreatedAt
	})
}

func NewEvents() *Documents[models.Event, *models.Event] {
	return newDocuments[models.Event](func(a, b *models.Event) bool {
		return a.Date < b.Date
	})
}

func (d *Documents[T, PT]) List(_ context.Context) ([]T, error) {
	d.mu.RLock()
	out := make([]T, 0, len(d.items))
	for _, item := range d.items {
		out = append(out, item)
	}
	d.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if d.less(&out[i], &out[j]) {
			return true
		}
		if d.less(&out[j], &out[i]) {
			return false
		}
		return PT(&out[i]).GetID() < PT(&out[j]).GetID()
	})
	return out, nil
}

func (d *Documents[T, PT]) Get(_ context.Context, id string) (*T, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	item, ok := d.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return &item, nil
}

func (d *Documents[T, PT]) Create(_ context.Context, item *T) (string, error) {
	id := uuid.NewString()
	PT(item).SetID(id)
	d.mu.Lock()
	d.items[id] = *item
	d.mu.Unlock()
	return id, nil
}

func (d *Documents[T, PT]) Update(_ context.Context, id string, item *T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	current, ok := d.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	next := *item
	PT(&next).SetID(id)
	PT(&next).SetCreatedAt(PT(&current).GetCreatedAt())
	d.items[id] = next
	return nil
}

func (d *Documents[T, PT]) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	delete(d.items, id)
	d.mu.Unlock()
	return nil
}

// Activity is an in-memory audit trail. FailWith simulates backend rules
// rejecting every call.
type Activity struct {
	docs *Documents[models.ActivityLog, *models.ActivityLog]

	mu  sync.RWMutex
	err error
}

func NewActivity() *Activity {
	return &Activity{docs: newDocuments[models.ActivityLog](func(a, b *models.ActivityLog) bool {
		return a.CreatedAt > b.CreatedAt
	})}
}

// FailWith makes every later call return err; nil restores normal behavior.
func (a *Activity) FailWith(err error) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
}

func (a *Activity) failure() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

func (a *Activity) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if err := a.failure(); err != nil {
		return nil, err
	}
	items, err := a.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (a *Activity) Append(ctx context.Context, entry *models.ActivityLog) (string, error) {
	if err := a.failure(); err != nil {
		return "", err
	}
	return a.docs.Create(ctx, entry)
}

func (a *Activity) Delete(ctx context.Context, id string) error {
	if err := a.failure(); err != nil {
		return err
	}
	return a.docs.Delete(ctx, id)
}

// SiteConfig is the in-memory singleton.
type SiteConfig struct {
	mu  sync.RWMutex
	cfg *models.SiteConfig
}

func NewSiteConfig() *SiteConfig { return &SiteConfig{} }

func (s *SiteConfig) Get(_ context.Context) (*models.SiteConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil, nil
	}
	cp := *s.cfg
	return &cp, nil
}

func (s *SiteConfig) Merge(_ context.Context, patch models.SiteConfigPatch, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		s.cfg = &models.SiteConfig{ID: models.SiteConfigID}
	}
	patch.Apply(s.cfg)
	s.cfg.UpdatedAt = updatedAt
	return nil
}

// Gallery is the in-memory key-value tree.
type Gallery struct {
	mu    sync.RWMutex
	items map[string]models.GalleryPhoto
}

func NewGallery() *Gallery {
	return &Gallery{items: make(map[string]models.GalleryPhoto)}
}

func (g *Gallery) List(_ context.Context) ([]models.GalleryPhoto, error) {
	g.mu.RLock()
	out := make([]models.GalleryPhoto, 0, len(g.items))
	for _, p := range g.items {
		out = append(out, p)
	}
	g.mu.RUnlock()
	store.SortGallery(out)
	return out, nil
}

func (g *Gallery) Get(_ context.Context, key string) (*models.GalleryPhoto, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: gallery/%s", store.ErrNotFound, key)
	}
	return &p, nil
}

func (g *Gallery) Push(_ context.Context, photo *models.GalleryPhoto) (string, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	photo.Key = key.String()
	g.mu.Lock()
	g.items[photo.Key] = *photo
	g.mu.Unlock()
	return photo.Key, nil
}

func (g *Gallery) Set(_ context.Context, key string, photo *models.GalleryPhoto) error {
	next := *photo
	next.Key = key
	g.mu.Lock()
	g.items[key] = next
	g.mu.Unlock()
	return nil
}

func (g *Gallery) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.items, key)
	g.mu.Unlock()
	return nil
}

// Objects is an in-memory blob store.
type Objects struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string][]byte
}

func NewObjects(baseURL string) *Objects {
	return &Objects{baseURL: strings.TrimRight(baseURL, "/"), blobs: make(map[string][]byte)}
}

func (o *Objects) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	o.mu.Lock()
	o.blobs[path] = append([]byte(nil), data...)
	o.mu.Unlock()
	return o.baseURL + "/" + path, nil
}

func (o *Objects) Delete(_ context.Context, path string) error {
	o.mu.Lock()
	delete(o.blobs, path)
	o.mu.Unlock()
	return nil
}

// Has reports whether path is stored.
func (o *Objects) Has(path string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.blobs[path]
	return ok
}
