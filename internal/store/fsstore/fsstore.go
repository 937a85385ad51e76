// Package fsstore persists documents in Cloud Firestore.
package fsstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// Stores bundles the Firestore-backed document stores.
type Stores struct {
	Programs   *Documents[models.Program, *models.Program]
	Events     *Documents[models.Event, *models.Event]
	Activity   *Activity
	SiteConfig *SiteConfig
}

// New wires every document collection onto client.
func New(client *firestore.Client) Stores {
	return Stores{
		Programs:   NewDocuments[models.Program](client, store.CollectionPrograms, store.ProgramOrder),
		Events:     NewDocuments[models.Event](client, store.CollectionEvents, store.EventOrder),
		Activity:   &Activity{docs: NewDocuments[models.ActivityLog](client, store.CollectionActivity, store.ActivityOrder)},
		SiteConfig: &SiteConfig{client: client},
	}
}

// mapError converts gRPC status codes into store sentinels.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%s: %w: %v", op, store.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Documents is one ordered Firestore collection.
type Documents[T any, PT interface {
	*T
	models.Entity
}] struct {
	client *firestore.Client
	name   string
	order  store.Order
}

func NewDocuments[T any, PT interface {
	*T
	models.Entity
}](client *firestore.Client, name string, order store.Order) *Documents[T, PT] {
	return &Documents[T, PT]{client: client, name: name, order: order}
}

func (d *Documents[T, PT]) query(limit int) firestore.Query {
	dir := firestore.Asc
	if d.order.Desc {
		dir = firestore.Desc
	}
	q := d.client.Collection(d.name).OrderBy(d.order.Field, dir)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func (d *Documents[T, PT]) list(ctx context.Context, limit int) ([]T, error) {
	snaps, err := d.query(limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError("list "+d.name, err)
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		var item T
		if err := snap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", d.name, snap.Ref.ID, err)
		}
		PT(&item).SetID(snap.Ref.ID)
		out = append(out, item)
	}
	return out, nil
}

func (d *Documents[T, PT]) List(ctx context.Context) ([]T, error) {
	return d.list(ctx, 0)
}

func (d *Documents[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	snap, err := d.client.Collection(d.name).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError("get "+d.name+"/"+id, err)
	}
	var item T
	if err := snap.DataTo(&item); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", d.name, id, err)
	}
	PT(&item).SetID(id)
	return &item, nil
}

func (d *Documents[T, PT]) Create(ctx context.Context, item *T) (string, error) {
	ref, _, err := d.client.Collection(d.name).Add(ctx, item)
	if err != nil {
		return "", mapError("add "+d.name, err)
	}
	PT(item).SetID(ref.ID)
	return ref.ID, nil
}

// Update writes the editable fields and updatedAt, leaving createdAt as is.
// A missing document fails with ErrNotFound.
func (d *Documents[T, PT]) Update(ctx context.Context, id string, item *T) error {
	fields := PT(item).Fields()
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if ms := PT(item).GetUpdatedAt(); ms > 0 {
		updates = append(updates, firestore.Update{Path: "updatedAt", Value: ms})
	}
	_, err := d.client.Collection(d.name).Doc(id).Update(ctx, updates)
	return mapError("update "+d.name+"/"+id, err)
}

func (d *Documents[T, PT]) Delete(ctx context.Context, id string) error {
	_, err := d.client.Collection(d.name).Doc(id).Delete(ctx)
	return mapError("delete "+d.name+"/"+id, err)
}

// Activity reads the newest entries of activity_logs.
type Activity struct {
	docs *Documents[models.ActivityLog, *models.ActivityLog]
}

func (a *Activity) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return a.docs.list(ctx, limit)
}

func (a *Activity) Append(ctx context.Context, entry *models.ActivityLog) (string, error) {
	return a.docs.Create(ctx, entry)
}

func (a *Activity) Delete(ctx context.Context, id string) error {
	return a.docs.Delete(ctx, id)
}

// SiteConfig is the site_config/current document.
type SiteConfig struct {
	client *firestore.Client
}

func (s *SiteConfig) doc() *firestore.DocumentRef {
	return s.client.Collection(store.CollectionSiteConfig).Doc(models.SiteConfigID)
}

func (s *SiteConfig) Get(ctx context.Context) (*models.SiteConfig, error) {
	snap, err := s.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, mapError("get site config", err)
	}
	var cfg models.SiteConfig
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("decode site config: %w", err)
	}
	cfg.ID = models.SiteConfigID
	return &cfg, nil
}

func (s *SiteConfig) Merge(ctx context.Context, patch models.SiteConfigPatch, updatedAt int64) error {
	data := patch.Map()
	data["updatedAt"] = updatedAt
	_, err := s.doc().Set(ctx, data, firestore.MergeAll)
	return mapError("merge site config", err)
}

// Watch calls onChange for the initial state of collection and every change
// after it, until ctx is done.
func Watch(ctx context.Context, client *firestore.Client, collection string, onChange func()) error {
	it := client.Collection(collection).Snapshots(ctx)
	defer it.Stop()
	for {
		if _, err := it.Next(); err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
				return nil
			}
			return mapError("watch "+collection, err)
		}
		onChange()
	}
}
