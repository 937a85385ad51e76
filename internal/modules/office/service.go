// Package office is the dashboard's write side: program, event, gallery and
// site config edits, each followed by an activity log entry.
package office

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/imagepipe"
	"github.com/ummachristians-netizen/umma-christians/internal/store"
)

// Outcome is what the dashboard shows after a write. Warning is set when the
// write landed but its activity entry was refused.
type Outcome struct {
	Status  string      `json:"status"`
	Warning bool        `json:"warning"`
	Data    interface{} `json:"data,omitempty"`
}

// Error is a write that did not happen, with the status line to show.
type Error struct {
	HTTP   int
	Status string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Status
	}
	return e.Status + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func fail(httpStatus int, status string, err error) error {
	return &Error{HTTP: httpStatus, Status: status, Err: err}
}

// writeFailed maps a store error to the generic status lines.
func writeFailed(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fail(http.StatusNotFound, StatusNotFound, err)
	}
	return fail(http.StatusInternalServerError, StatusSaveFailed, err)
}

type Options struct {
	Backend  *store.Backend
	Gallery  config.GalleryConfig
	Activity *render.ActivityFeed
	Notifier livequery.Notifier
	// OnActivity receives the local ring after every recorded entry.
	OnActivity func(render.ActivityView)
	Logger     *zap.Logger
}

type Service struct {
	backend    *store.Backend
	pipeline   *imagepipe.Pipeline
	mode       string
	activity   *render.ActivityFeed
	notifier   livequery.Notifier
	onActivity func(render.ActivityView)
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(opts Options) *Service {
	s := &Service{
		backend:    opts.Backend,
		pipeline:   imagepipe.New(opts.Gallery.MaxImageBytes),
		mode:       opts.Gallery.Mode,
		activity:   opts.Activity,
		notifier:   opts.Notifier,
		onActivity: opts.OnActivity,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if s.mode == "" {
		s.mode = config.GalleryInline
	}
	if s.activity == nil {
		s.activity = render.NewActivityFeed()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *Service) millis() int64 { return s.now().UnixMilli() }

func (s *Service) notify(ctx context.Context, topic string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, topic)
	}
}

// logActivity records message in the local ring, then in the store. It
// reports false when the store refused the entry.
func (s *Service) logActivity(ctx context.Context, message, kind string) bool {
	entry := models.ActivityLog{Message: message, Type: kind, CreatedAt: s.millis()}
	view := s.activity.Record(entry)
	if s.onActivity != nil {
		s.onActivity(view)
	}

	if _, err := s.backend.Activity.Append(ctx, &entry); err != nil {
		if errors.Is(err, store.ErrPermissionDenied) {
			s.logger.Warn("activity log denied", zap.String("message", message))
			return false
		}
		s.logger.Warn("activity log failed", zap.String("message", message), zap.Error(err))
		return true
	}
	s.notify(ctx, livequery.TopicActivity)
	return true
}

func (s *Service) done(ctx context.Context, status, message, kind string, data interface{}) *Outcome {
	out := &Outcome{Status: status, Data: data}
	if !s.logActivity(ctx, message, kind) {
		out.Status, out.Warning = StatusActivityBlocked, true
	}
	return out
}

func (s *Service) ListPrograms(ctx context.Context) ([]models.Program, error) {
	return s.backend.Programs.List(ctx)
}

func (s *Service) AddProgram(ctx context.Context, in ProgramDTO) (*Outcome, error) {
	p := in.model()
	p.CreatedAt = s.millis()
	if _, err := s.backend.Programs.Create(ctx, &p); err != nil {
		return nil, writeFailed(err)
	}
	s.notify(ctx, livequery.TopicPrograms)
	return s.done(ctx, StatusProgramAdded,
		fmt.Sprintf("Added weekly program: %s - %s", p.Day, p.Title), models.ActivityProgram, p), nil
}

func (s *Service) UpdateProgram(ctx context.Context, id string, in ProgramDTO) (*Outcome, error) {
	p := in.model()
	p.UpdatedAt = s.millis()
	if err := s.backend.Programs.Update(ctx, id, &p); err != nil {
		return nil, writeFailed(err)
	}
	p.ID = id
	s.notify(ctx, livequery.TopicPrograms)
	return s.done(ctx, StatusProgramUpdated,
		fmt.Sprintf("Updated weekly program: %s - %s", p.Day, p.Title), models.ActivityProgram, p), nil
}

func (s *Service) DeleteProgram(ctx context.Context, id string) (*Outcome, error) {
	if err := s.backend.Programs.Delete(ctx, id); err != nil {
		return nil, writeFailed(err)
	}
	s.notify(ctx, livequery.TopicPrograms)
	return s.done(ctx, StatusProgramRemoved, "Deleted a weekly program", models.ActivityProgram, nil), nil
}

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.backend.Events.List(ctx)
}

func (s *Service) AddEvent(ctx context.Context, in EventDTO) (*Outcome, error) {
	e := in.model()
	e.CreatedAt = s.millis()
	if _, err := s.backend.Events.Create(ctx, &e); err != nil {
		return nil, writeFailed(err)
	}
	s.notify(ctx, livequery.TopicEvents)
	return s.done(ctx, StatusEventAdded, "Added event: "+e.Title, models.ActivityEvent, e), nil
}

func (s *Service) UpdateEvent(ctx context.Context, id string, in EventDTO) (*Outcome, error) {
	e := in.model()
	e.UpdatedAt = s.millis()
	if err := s.backend.Events.Update(ctx, id, &e); err != nil {
		return nil, writeFailed(err)
	}
	e.ID = id
	s.notify(ctx, livequery.TopicEvents)
	return s.done(ctx, StatusEventUpdated, "Updated event: "+e.Title, models.ActivityEvent, e), nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) (*Outcome, error) {
	if err := s.backend.Events.Delete(ctx, id); err != nil {
		return nil, writeFailed(err)
	}
	s.notify(ctx, livequery.TopicEvents)
	return s.done(ctx, StatusEventRemoved, "Deleted an event", models.ActivityEvent, nil), nil
}

// SiteConfig returns the stored config, nil when it was never written.
func (s *Service) SiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	return s.backend.SiteConfig.Get(ctx)
}

func (s *Service) UpdateSiteConfig(ctx context.Context, in SiteConfigDTO) (*Outcome, error) {
	if err := s.backend.SiteConfig.Merge(ctx, in.patch(), s.millis()); err != nil {
		return nil, writeFailed(err)
	}
	s.notify(ctx, livequery.TopicSiteConfig)
	return s.done(ctx, StatusSiteUpdated, "Updated verse and themes", models.ActivityTheme, nil), nil
}

func (s *Service) ListPhotos(ctx context.Context) ([]models.GalleryPhoto, error) {
	return s.backend.Gallery.List(ctx)
}

// AddPhoto bounds the image size and stores it inline or in object storage,
// depending on the gallery mode. Nothing is written when any step fails.
func (s *Service) AddPhoto(ctx context.Context, in PhotoDTO, file *Upload) (*Outcome, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || file == nil || len(file.Data) == 0 {
		return nil, fail(http.StatusBadRequest, StatusPhotoRequired, nil)
	}

	res, err := s.pipeline.Compress(file.Data, file.Filename, file.ContentType)
	switch {
	case errors.Is(err, imagepipe.ErrTooLarge):
		return nil, fail(http.StatusRequestEntityTooLarge, StatusPhotoTooLarge, err)
	case err != nil:
		return nil, fail(http.StatusUnprocessableEntity, StatusPhotoFailed, err)
	}
	if res.Compressed() {
		last := res.Passes[len(res.Passes)-1]
		s.logger.Info("gallery image compressed",
			zap.String("file", file.Filename),
			zap.Int("from", len(file.Data)),
			zap.Int("to", len(res.Data)),
			zap.Int("passes", len(res.Passes)),
			zap.Int("quality", last.Quality))
	}

	createdAt := s.millis()
	photo := models.GalleryPhoto{
		Title:     title,
		Link:      strings.TrimSpace(in.Link),
		Size:      int64(len(res.Data)),
		CreatedAt: createdAt,
	}

	if s.mode == config.GalleryStorage && s.backend.Objects != nil {
		path := store.GalleryObjectPath(createdAt, res.Name)
		url, err := s.backend.Objects.Upload(ctx, path, res.Data, res.ContentType)
		if err != nil {
			return nil, fail(http.StatusBadGateway, StatusPhotoFailed, err)
		}
		photo.URL, photo.StoragePath = url, path
	} else {
		encoded, err := imagepipe.EncodeInline(res.Data)
		if err != nil {
			return nil, fail(http.StatusRequestEntityTooLarge, StatusPhotoTooLarge, err)
		}
		photo.Image = encoded
	}

	if _, err := s.backend.Gallery.Push(ctx, &photo); err != nil {
		s.dropObject(ctx, photo.StoragePath)
		return nil, fail(http.StatusInternalServerError, StatusPhotoFailed, err)
	}
	s.notify(ctx, livequery.TopicGallery)
	return s.done(ctx, StatusPhotoAdded, "Added gallery item: "+title, models.ActivityGallery, photoSummary(photo)), nil
}

// UpdatePhoto rewrites the title and link. The image, its storage location
// and createdAt are carried over from the stored record.
func (s *Service) UpdatePhoto(ctx context.Context, key string, in PhotoDTO) (*Outcome, error) {
	current, err := s.backend.Gallery.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, writeFailed(err)
	}
	if current == nil || (current.Image == "" && current.URL == "" && current.StoragePath == "") {
		return nil, fail(http.StatusUnprocessableEntity, StatusPhotoNoPayload, err)
	}

	now := s.millis()
	next := models.GalleryPhoto{
		Title:       strings.TrimSpace(in.Title),
		Link:        strings.TrimSpace(in.Link),
		Image:       current.Image,
		URL:         current.URL,
		StoragePath: current.StoragePath,
		Size:        current.Size,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   now,
	}
	if next.CreatedAt == 0 {
		next.CreatedAt = now
	}
	if err := s.backend.Gallery.Set(ctx, key, &next); err != nil {
		return nil, writeFailed(err)
	}
	next.Key = key
	s.notify(ctx, livequery.TopicGallery)
	return s.done(ctx, StatusPhotoUpdated, "Updated gallery item: "+next.Title, models.ActivityGallery, photoSummary(next)), nil
}

// DeletePhoto removes the record and then its stored object, if any.
func (s *Service) DeletePhoto(ctx context.Context, key string) (*Outcome, error) {
	current, err := s.backend.Gallery.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, writeFailed(err)
	}
	if err := s.backend.Gallery.Delete(ctx, key); err != nil {
		return nil, writeFailed(err)
	}
	if current != nil {
		s.dropObject(ctx, current.StoragePath)
	}
	s.notify(ctx, livequery.TopicGallery)
	return s.done(ctx, StatusPhotoRemoved, "Deleted a gallery item", models.ActivityGallery, nil), nil
}

func (s *Service) dropObject(ctx context.Context, path string) {
	if path == "" || s.backend.Objects == nil {
		return
	}
	if err := s.backend.Objects.Delete(ctx, path); err != nil {
		s.logger.Warn("delete gallery object failed", zap.String("path", path), zap.Error(err))
	}
}

// Activity reads the audit trail through the fallback ring.
func (s *Service) Activity(ctx context.Context) render.ActivityView {
	items, err := s.backend.Activity.Recent(ctx, store.ActivityLimit)
	return s.activity.Apply(livequery.Snapshot[models.ActivityLog]{Items: items, Err: err, At: s.now()})
}

func (s *Service) DeleteActivity(ctx context.Context, id string) (*Outcome, error) {
	if err := s.backend.Activity.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrPermissionDenied) {
			return nil, fail(http.StatusForbidden, StatusActivityBlocked, err)
		}
		return nil, writeFailed(err)
	}
	s.notify(ctx, livequery.TopicActivity)
	return &Outcome{Status: StatusActivityDelete}, nil
}

// photoSummary drops the inline bytes from API responses.
func photoSummary(p models.GalleryPhoto) models.GalleryPhoto {
	p.Image = ""
	return p
}
