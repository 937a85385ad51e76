package sqlstore

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Program{}, &models.Event{}, &models.ActivityLog{}, &models.SiteConfig{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strp(s string) *string { return &s }

func TestProgramsCRUD(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))

	first := &models.Program{Day: "Sunday", Title: "Service", CreatedAt: 10}
	if _, err := s.Programs.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := &models.Program{Day: "Friday", Title: "Youth", CreatedAt: 20}
	if _, err := s.Programs.Create(ctx, second); err != nil {
		t.Fatal(err)
	}

	items, err := s.Programs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Title != "Youth" {
		t.Fatalf("List order: %+v", items)
	}

	err = s.Programs.Update(ctx, first.ID, &models.Program{Day: "Sunday", Title: "Worship", UpdatedAt: 30})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Programs.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Worship" || got.CreatedAt != 10 || got.UpdatedAt != 30 {
		t.Fatalf("after update: %+v", got)
	}

	if err := s.Programs.Update(ctx, "nope", &models.Program{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Update missing = %v", err)
	}
	if err := s.Programs.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Programs.Get(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get deleted = %v", err)
	}
}

func TestEventsOrderedByDate(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	for _, date := range []string{"2025-12-24", "2025-04-20", "2025-06-01"} {
		if _, err := s.Events.Create(ctx, &models.Event{Title: date, Date: date, Category: "General"}); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.Events.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Date != "2025-04-20" || items[2].Date != "2025-12-24" {
		t.Fatalf("order: %+v", items)
	}
}

func TestActivityRecentLimit(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))
	for i := 0; i < 5; i++ {
		if _, err := s.Activity.Append(ctx, &models.ActivityLog{Message: "m", Type: "program", CreatedAt: int64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.Activity.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0].CreatedAt != 4 {
		t.Fatalf("recent: %+v", items)
	}
}

func TestSiteConfigMergeUpsert(t *testing.T) {
	ctx := context.Background()
	s := New(openTestDB(t))

	if cfg, err := s.SiteConfig.Get(ctx); err != nil || cfg != nil {
		t.Fatalf("empty Get = %v, %v", cfg, err)
	}
	if err := s.SiteConfig.Merge(ctx, models.SiteConfigPatch{
		VerseText:      strp("Psalm 23"),
		VerseReference: strp("Ps 23:1"),
		ContactEmail:   strp("office@church.org"),
	}, 100); err != nil {
		t.Fatalf("Merge insert: %v", err)
	}
	if err := s.SiteConfig.Merge(ctx, models.SiteConfigPatch{ThemeDay: strp("Hope")}, 200); err != nil {
		t.Fatalf("Merge update: %v", err)
	}

	cfg, err := s.SiteConfig.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VerseText != "Psalm 23" || cfg.ContactEmail != "office@church.org" {
		t.Fatalf("merge overwrote unspecified fields: %+v", cfg)
	}
	if cfg.ThemeDay != "Hope" || cfg.UpdatedAt != 200 {
		t.Fatalf("merge did not apply: %+v", cfg)
	}
}
