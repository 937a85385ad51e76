// Package sqlstore persists documents in MySQL through gorm. It is the
// self-hosted alternative to Firestore.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// Stores bundles the gorm-backed document stores.
type Stores struct {
	Programs   *Documents[models.Program, *models.Program]
	Events     *Documents[models.Event, *models.Event]
	Activity   *Activity
	SiteConfig *SiteConfig
}

func New(db *gorm.DB) Stores {
	return Stores{
		Programs:   NewDocuments[models.Program](db, store.ProgramOrder),
		Events:     NewDocuments[models.Event](db, store.EventOrder),
		Activity:   &Activity{docs: NewDocuments[models.ActivityLog](db, store.ActivityOrder)},
		SiteConfig: &SiteConfig{db: db},
	}
}

// Documents is one ordered table.
type Documents[T any, PT interface {
	*T
	models.Entity
}] struct {
	db    *gorm.DB
	order store.Order
}

func NewDocuments[T any, PT interface {
	*T
	models.Entity
}](db *gorm.DB, order store.Order) *Documents[T, PT] {
	return &Documents[T, PT]{db: db, order: order}
}

func (d *Documents[T, PT]) ordered(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: d.order.Column}, Desc: d.order.Desc}).
		Order("id")
}

func (d *Documents[T, PT]) list(ctx context.Context, limit int) ([]T, error) {
	var out []T
	q := d.ordered(ctx)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

func (d *Documents[T, PT]) List(ctx context.Context) ([]T, error) {
	return d.list(ctx, 0)
}

func (d *Documents[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *Documents[T, PT]) Create(ctx context.Context, item *T) (string, error) {
	id := uuid.NewString()
	PT(item).SetID(id)
	if err := d.db.WithContext(ctx).Create(item).Error; err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	return id, nil
}

func (d *Documents[T, PT]) Update(ctx context.Context, id string, item *T) error {
	var count int64
	if err := d.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	fields := PT(item).Fields()
	if ms := PT(item).GetUpdatedAt(); ms > 0 {
		fields["updated_at"] = ms
	}
	return d.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error
}

func (d *Documents[T, PT]) Delete(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error
}

// Activity is the activity_logs table.
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

// SiteConfig keeps the singleton row with id "current".
type SiteConfig struct {
	db *gorm.DB
}

func (s *SiteConfig) Get(ctx context.Context) (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	err := s.db.WithContext(ctx).Where("id = ?", models.SiteConfigID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge inserts the row or updates only the columns the patch sets.
func (s *SiteConfig) Merge(ctx context.Context, patch models.SiteConfigPatch, updatedAt int64) error {
	row := models.SiteConfig{ID: models.SiteConfigID, UpdatedAt: updatedAt}
	patch.Apply(&row)

	columns := []string{"updated_at"}
	for name := range patch.Map() {
		columns = append(columns, s.db.NamingStrategy.ColumnName("", name))
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&row).Error
}
