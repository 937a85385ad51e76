package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

func strp(s string) *string { return &s }

func TestProgramsListNewestFirst(t *testing.T) {
	ctx := context.Background()
	docs := NewPrograms()
	for i, title := range []string{"Prayer", "Bible Study", "Choir"} {
		p := &models.Program{Day: "Monday", Title: title, CreatedAt: int64(100 + i)}
		if _, err := docs.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.ID == "" {
			t.Fatal("Create did not set id")
		}
	}
	items, err := docs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 || items[0].Title != "Choir" || items[2].Title != "Prayer" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestEventsListByDate(t *testing.T) {
	ctx := context.Background()
	docs := NewEvents()
	for _, date := range []string{"2025-03-01", "2025-01-15", "2025-02-10"} {
		if _, err := docs.Create(ctx, &models.Event{Title: date, Date: date}); err != nil {
			t.Fatal(err)
		}
	}
	items, _ := docs.List(ctx)
	want := []string{"2025-01-15", "2025-02-10", "2025-03-01"}
	for i, ev := range items {
		if ev.Date != want[i] {
			t.Fatalf("items[%d].Date = %q, want %q", i, ev.Date, want[i])
		}
	}
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	docs := NewPrograms()
	id, _ := docs.Create(ctx, &models.Program{Title: "Old", CreatedAt: 42})

	if err := docs.Update(ctx, id, &models.Program{Title: "New", UpdatedAt: 99}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := docs.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New" || got.CreatedAt != 42 || got.UpdatedAt != 99 {
		t.Fatalf("got %+v", got)
	}

	if err := docs.Update(ctx, "missing", &models.Program{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Update missing = %v, want ErrNotFound", err)
	}
	if err := docs.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := docs.Get(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get deleted = %v", err)
	}
}

func TestActivityLimitAndFailure(t *testing.T) {
	ctx := context.Background()
	a := NewActivity()
	for i := 0; i < 45; i++ {
		if _, err := a.Append(ctx, &models.ActivityLog{Message: "x", CreatedAt: int64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	items, err := a.Recent(ctx, store.ActivityLimit)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 40 || items[0].CreatedAt != 44 {
		t.Fatalf("len=%d first=%d", len(items), items[0].CreatedAt)
	}

	a.FailWith(store.ErrPermissionDenied)
	if _, err := a.Recent(ctx, 10); !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Recent = %v", err)
	}
	if _, err := a.Append(ctx, &models.ActivityLog{}); !errors.Is(err, store.ErrPermissionDenied) {
		t.Fatalf("Append = %v", err)
	}
}

func TestSiteConfigMerge(t *testing.T) {
	ctx := context.Background()
	s := NewSiteConfig()
	if cfg, err := s.Get(ctx); err != nil || cfg != nil {
		t.Fatalf("empty Get = %v, %v", cfg, err)
	}
	_ = s.Merge(ctx, models.SiteConfigPatch{VerseText: strp("John 3:16"), ContactEmail: strp("office@church.org")}, 1)
	_ = s.Merge(ctx, models.SiteConfigPatch{ThemeYear: strp("Faith")}, 2)

	cfg, _ := s.Get(ctx)
	if cfg.VerseText != "John 3:16" || cfg.ContactEmail != "office@church.org" || cfg.ThemeYear != "Faith" || cfg.UpdatedAt != 2 {
		t.Fatalf("merge lost fields: %+v", cfg)
	}
}

func TestGalleryPushSetDelete(t *testing.T) {
	ctx := context.Background()
	g := NewGallery()
	old := &models.GalleryPhoto{Title: "Old", Image: "abc", CreatedAt: 1}
	key, err := g.Push(ctx, old)
	if err != nil || key == "" || old.Key != key {
		t.Fatalf("Push = %q, %v", key, err)
	}
	_, _ = g.Push(ctx, &models.GalleryPhoto{Title: "New", Link: "https://x", CreatedAt: 2})

	items, _ := g.List(ctx)
	if items[0].Title != "New" {
		t.Fatalf("gallery not newest first: %+v", items)
	}

	if err := g.Set(ctx, key, &models.GalleryPhoto{Title: "Renamed", Image: "abc", CreatedAt: 1}); err != nil {
		t.Fatal(err)
	}
	got, _ := g.Get(ctx, key)
	if got.Title != "Renamed" || got.Key != key {
		t.Fatalf("Set: %+v", got)
	}
	_ = g.Delete(ctx, key)
	if _, err := g.Get(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get deleted = %v", err)
	}
}

func TestObjects(t *testing.T) {
	ctx := context.Background()
	o := NewObjects("memory://objects/")
	url, err := o.Upload(ctx, "gallery/1-a.jpg", []byte{1, 2}, "image/jpeg")
	if err != nil || url != "memory://objects/gallery/1-a.jpg" {
		t.Fatalf("Upload = %q, %v", url, err)
	}
	if !o.Has("gallery/1-a.jpg") {
		t.Fatal("object not stored")
	}
	if err := o.Delete(ctx, "gallery/1-a.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := o.Delete(ctx, "gallery/1-a.jpg"); err != nil {
		t.Fatalf("delete missing = %v", err)
	}
}
