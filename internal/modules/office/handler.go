package office

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/middleware"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/chrome"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/live"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/response"
)

// uploadLimit caps the multipart body before compression.
const uploadLimit = 32 << 20

type Handler struct {
	svc           *Service
	feeds         *live.Feeds
	renderer      *render.Renderer
	activity      *render.ActivityFeed
	maxImageBytes int
	logger        *zap.Logger
}

func NewHandler(svc *Service, feeds *live.Feeds, renderer *render.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:           svc,
		feeds:         feeds,
		renderer:      renderer,
		activity:      svc.activity,
		maxImageBytes: svc.pipeline.Ceiling,
		logger:        logger,
	}
}

// RegisterRoutes mounts the dashboard page and its JSON API. optionalMW
// attaches a session when there is one; authMW rejects requests without.
// Extra handlers run on every API write.
func (h *Handler) RegisterRoutes(r gin.IRouter, optionalMW, authMW gin.HandlerFunc, writeMW ...gin.HandlerFunc) {
	r.GET(gate.DashboardPath, optionalMW, h.page)

	api := r.Group("/office/api", authMW)
	api.GET("/programs", h.listPrograms)
	api.GET("/events", h.listEvents)
	api.GET("/gallery", h.listPhotos)
	api.GET("/site-config", h.getSiteConfig)
	api.GET("/activity", h.listActivity)

	writes := api.Group("", writeMW...)
	writes.POST("/programs", h.addProgram)
	writes.PUT("/programs/:id", h.updateProgram)
	writes.DELETE("/programs/:id", h.deleteProgram)

	writes.POST("/events", h.addEvent)
	writes.PUT("/events/:id", h.updateEvent)
	writes.DELETE("/events/:id", h.deleteEvent)

	writes.POST("/gallery", h.addPhoto)
	writes.PUT("/gallery/:key", h.updatePhoto)
	writes.DELETE("/gallery/:key", h.deletePhoto)

	writes.PUT("/site-config", h.updateSiteConfig)
	writes.DELETE("/activity/:id", h.deleteActivity)
}

func (h *Handler) page(c *gin.Context) {
	action := gate.Decide(gate.PageDashboard, middleware.State(c))
	if target := gate.Target(action); target != "" {
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	snaps, err := h.feeds.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("read dashboard snapshot failed", zap.Error(err))
		response.InternalError(c, StatusSaveFailed)
		return
	}
	page, err := live.OfficePage(h.renderer, h.activity, snaps)
	if err != nil {
		h.logger.Error("render dashboard failed", zap.Error(err))
		response.InternalError(c, "Could not render the dashboard.")
		return
	}

	sections := chrome.NewSections(chrome.OfficeTabs()...)
	sections.Activate(c.Query("section"))
	page.Sections = sections.Tabs()
	page.Sidebar = chrome.SidebarFromCookie(c, chrome.CookieOffice, chrome.OfficeBreakpoint)
	page.MaxImageBytes = h.maxImageBytes
	if s := middleware.CurrentSession(c); s != nil {
		page.Email = s.Email
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := h.renderer.Page(c.Writer, render.PageOffice, page); err != nil {
		h.logger.Error("write dashboard failed", zap.Error(err))
	}
}

func (h *Handler) reply(c *gin.Context, created bool, out *Outcome, err error) {
	if err != nil {
		var oe *Error
		if errors.As(err, &oe) {
			if oe.HTTP >= http.StatusInternalServerError {
				h.logger.Error("office write failed", zap.String("path", c.FullPath()), zap.Error(err))
			}
			response.Fail(c, oe.HTTP, oe.Status)
			return
		}
		h.logger.Error("office write failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, StatusSaveFailed)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"ok": 1, "message": out.Status, "warning": out.Warning, "data": out.Data})
}

func (h *Handler) listPrograms(c *gin.Context) {
	items, err := h.svc.ListPrograms(c.Request.Context())
	if err != nil {
		response.InternalError(c, StatusSaveFailed)
		return
	}
	response.OK(c, items)
}

func (h *Handler) addProgram(c *gin.Context) {
	var dto ProgramDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusInvalidForm)
		return
	}
	out, err := h.svc.AddProgram(c.Request.Context(), dto)
	h.reply(c, true, out, err)
}

func (h *Handler) updateProgram(c *gin.Context) {
	var dto ProgramDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusInvalidForm)
		return
	}
	out, err := h.svc.UpdateProgram(c.Request.Context(), c.Param("id"), dto)
	h.reply(c, false, out, err)
}

func (h *Handler) deleteProgram(c *gin.Context) {
	out, err := h.svc.DeleteProgram(c.Request.Context(), c.Param("id"))
	h.reply(c, false, out, err)
}

func (h *Handler) listEvents(c *gin.Context) {
	items, err := h.svc.ListEvents(c.Request.Context())
	if err != nil {
		response.InternalError(c, StatusSaveFailed)
		return
	}
	response.OK(c, items)
}

func (h *Handler) addEvent(c *gin.Context) {
	var dto EventDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusInvalidForm)
		return
	}
	out, err := h.svc.AddEvent(c.Request.Context(), dto)
	h.reply(c, true, out, err)
}

func (h *Handler) updateEvent(c *gin.Context) {
	var dto EventDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusInvalidForm)
		return
	}
	out, err := h.svc.UpdateEvent(c.Request.Context(), c.Param("id"), dto)
	h.reply(c, false, out, err)
}

func (h *Handler) deleteEvent(c *gin.Context) {
	out, err := h.svc.DeleteEvent(c.Request.Context(), c.Param("id"))
	h.reply(c, false, out, err)
}

func (h *Handler) getSiteConfig(c *gin.Context) {
	cfg, err := h.svc.SiteConfig(c.Request.Context())
	if err != nil {
		response.InternalError(c, StatusSaveFailed)
		return
	}
	response.OK(c, render.NewSiteForm(cfg))
}

func (h *Handler) updateSiteConfig(c *gin.Context) {
	var dto SiteConfigDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusInvalidForm)
		return
	}
	out, err := h.svc.UpdateSiteConfig(c.Request.Context(), dto)
	h.reply(c, false, out, err)
}

func (h *Handler) listPhotos(c *gin.Context) {
	items, err := h.svc.ListPhotos(c.Request.Context())
	if err != nil {
		response.InternalError(c, StatusSaveFailed)
		return
	}
	for i := range items {
		items[i] = photoSummary(items[i])
	}
	response.OK(c, items)
}

func (h *Handler) addPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploadLimit)
	var dto PhotoDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusPhotoRequired)
		return
	}
	upload, err := readUpload(c, "image")
	if err != nil {
		h.logger.Warn("read gallery upload failed", zap.Error(err))
		response.BadRequest(c, StatusPhotoFailed)
		return
	}
	out, err := h.svc.AddPhoto(c.Request.Context(), dto, upload)
	h.reply(c, true, out, err)
}

// readUpload returns the named file part, or nil when the form has none.
func readUpload(c *gin.Context, field string) (*Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

func (h *Handler) updatePhoto(c *gin.Context) {
	var dto PhotoDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.BadRequest(c, StatusInvalidForm)
		return
	}
	out, err := h.svc.UpdatePhoto(c.Request.Context(), c.Param("key"), dto)
	h.reply(c, false, out, err)
}

func (h *Handler) deletePhoto(c *gin.Context) {
	out, err := h.svc.DeletePhoto(c.Request.Context(), c.Param("key"))
	h.reply(c, false, out, err)
}

func (h *Handler) listActivity(c *gin.Context) {
	view := h.svc.Activity(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": view.Items, "banner": view.Banner})
}

func (h *Handler) deleteActivity(c *gin.Context) {
	out, err := h.svc.DeleteActivity(c.Request.Context(), c.Param("id"))
	h.reply(c, false, out, err)
}
