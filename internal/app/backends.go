package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/database"
	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/firebase"
	pkgredis "github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
	"github.com/ummachristians-netizen/umma-christians/internal/store/fsstore"
	"github.com/ummachristians-netizen/umma-christians/internal/store/memstore"
	"github.com/ummachristians-netizen/umma-christians/internal/store/objectstore"
	"github.com/ummachristians-netizen/umma-christians/internal/store/redisstore"
	"github.com/ummachristians-netizen/umma-christians/internal/store/rtdbstore"
	"github.com/ummachristians-netizen/umma-christians/internal/store/sqlstore"
)

// backends holds the connections opened for the configured stores. Any of
// db, rc and fb may be nil.
type backends struct {
	store.Backend
	db *gorm.DB
	rc *pkgredis.Client
	fb *firebase.App

	// watch starts change listeners that push into the notifier.
	watch func(ctx context.Context, notify livequery.Notifier)
}

func openBackends(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*backends, error) {
	b := &backends{Backend: memstore.NewBackend(), watch: func(context.Context, livequery.Notifier) {}}

	if cfg.UsesFirebase() {
		fb, err := firebase.New(ctx, cfg.Firebase)
		if err != nil {
			return nil, fmt.Errorf("firebase: %w", err)
		}
		b.fb = fb
	}
	if cfg.Redis.Enable {
		rc, err := pkgredis.Connect(cfg.RedisURL, cfg.Redis.Prefix)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		b.rc = rc
	}

	switch cfg.Backends.Documents {
	case config.DocumentsFirestore:
		client, err := b.fb.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		s := fsstore.New(client)
		b.Programs, b.Events, b.Activity, b.SiteConfig = s.Programs, s.Events, s.Activity, s.SiteConfig
		b.watch = func(ctx context.Context, notify livequery.Notifier) {
			watched := map[string]string{
				store.CollectionPrograms:   livequery.TopicPrograms,
				store.CollectionEvents:     livequery.TopicEvents,
				store.CollectionActivity:   livequery.TopicActivity,
				store.CollectionSiteConfig: livequery.TopicSiteConfig,
			}
			for collection, topic := range watched {
				collection, topic := collection, topic
				go func() {
					err := fsstore.Watch(ctx, client, collection, func() { notify.Notify(ctx, topic) })
					if err != nil && ctx.Err() == nil {
						logger.Error("firestore watch stopped", zap.String("collection", collection), zap.Error(err))
					}
				}()
			}
		}
	case config.DocumentsMySQL:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		b.db = db
		s := sqlstore.New(db)
		b.Programs, b.Events, b.Activity, b.SiteConfig = s.Programs, s.Events, s.Activity, s.SiteConfig
	}

	switch cfg.Backends.Realtime {
	case config.RealtimeRTDB:
		client, err := b.fb.Database(ctx)
		if err != nil {
			return nil, fmt.Errorf("realtime database: %w", err)
		}
		b.Gallery = rtdbstore.NewGallery(client)
	case config.RealtimeRedis:
		b.Gallery = redisstore.NewGallery(b.rc)
	}

	switch cfg.Backends.Objects {
	case config.ObjectsFirebase:
		bucket, err := b.fb.Bucket(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage bucket: %w", err)
		}
		b.Objects = objectstore.NewFirebase(bucket)
	case config.ObjectsS3:
		b.Objects = objectstore.NewS3(cfg.S3)
	case config.ObjectsNone:
		b.Objects = nil
	}

	logger.Info("backends ready",
		zap.String("documents", cfg.Backends.Documents),
		zap.String("realtime", cfg.Backends.Realtime),
		zap.String("objects", cfg.Backends.Objects),
		zap.String("auth", cfg.Backends.Auth),
		zap.Bool("redis", b.rc != nil),
	)
	return b, nil
}

func (b *backends) close() {
	if b.rc != nil {
		_ = b.rc.Close()
	}
	if b.fb != nil {
		_ = b.fb.Close()
	}
	if b.db != nil {
		if sqlDB, err := b.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
