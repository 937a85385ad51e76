// Package site serves the public landing page and the read-only JSON views
// of the published content.
package site

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/middleware"
	"github.com/ummachristians-netizen/umma-christians/internal/models"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/chrome"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/gateway"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/live"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/response"
)

const statusUnavailable = "Content is temporarily unavailable."

// ClientCounter reports connected sockets per namespace.
type ClientCounter interface {
	ClientCount(ns string) int
}

type Handler struct {
	feeds    *live.Feeds
	renderer *render.Renderer
	clients  ClientCounter
	logger   *zap.Logger
}

func NewHandler(feeds *live.Feeds, renderer *render.Renderer, clients ClientCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{feeds: feeds, renderer: renderer, clients: clients, logger: logger}
}

// RegisterRoutes mounts the landing page, the content API and the health
// probe. cacheMW, when given, wraps the content API.
func (h *Handler) RegisterRoutes(r gin.IRouter, optionalMW gin.HandlerFunc, cacheMW ...gin.HandlerFunc) {
	r.GET("/", optionalMW, h.page)
	r.GET("/bridge", optionalMW, h.bridge)
	r.GET("/healthz", h.health)

	api := r.Group("/api/site", cacheMW...)
	api.GET("/config", h.config)
	api.GET("/programs", h.programs)
	api.GET("/events", h.events)
	api.GET("/gallery", h.gallery)
}

func (h *Handler) page(c *gin.Context) {
	snaps, err := h.feeds.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("read site snapshot failed", zap.Error(err))
		response.InternalError(c, statusUnavailable)
		return
	}
	page, err := live.PublicPage(h.renderer, snaps)
	if err != nil {
		h.logger.Error("render site failed", zap.Error(err))
		response.InternalError(c, statusUnavailable)
		return
	}

	state := middleware.State(c)
	if gate.Decide(gate.PagePublic, state) == gate.ShowBridge {
		if page.Bridge, err = h.renderer.Bridge(gate.Bridge(state)); err != nil {
			h.logger.Error("render bridge failed", zap.Error(err))
			response.InternalError(c, statusUnavailable)
			return
		}
	}
	page.Sidebar = chrome.SidebarFromCookie(c, chrome.CookiePublic, chrome.PublicBreakpoint)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := h.renderer.Page(c.Writer, render.PagePublic, page); err != nil {
		h.logger.Error("write site page failed", zap.Error(err))
	}
}

// bridge re-renders the office bridge for the caller's session, so a public
// tab opened before a sign-in elsewhere catches up without a reload.
func (h *Handler) bridge(c *gin.Context) {
	state := middleware.State(c)
	f, err := live.BridgeFragment(h.renderer, state)
	if err != nil {
		h.logger.Error("render bridge failed", zap.Error(err))
		response.InternalError(c, statusUnavailable)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.OK(c, gin.H{"state": state, "target": f.Target, "html": f.HTML})
}

func (h *Handler) health(c *gin.Context) {
	clients := gin.H{}
	if h.clients != nil {
		clients["web"] = h.clients.ClientCount(gateway.NamespaceWeb)
		clients["office"] = h.clients.ClientCount(gateway.NamespaceOffice)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": clients})
}

func (h *Handler) config(c *gin.Context) {
	cfg, err := h.feeds.Site(c.Request.Context())
	if err != nil {
		h.unavailable(c, err)
		return
	}
	if cfg == nil {
		cfg = &models.SiteConfig{}
	}
	response.OK(c, cfg)
}

func (h *Handler) programs(c *gin.Context) {
	snap, err := h.feeds.Programs.Latest(c.Request.Context())
	if err == nil {
		err = snap.Err
	}
	if err != nil {
		h.unavailable(c, err)
		return
	}
	response.OK(c, nonNil(snap.Items))
}

func (h *Handler) events(c *gin.Context) {
	snap, err := h.feeds.Events.Latest(c.Request.Context())
	if err == nil {
		err = snap.Err
	}
	if err != nil {
		h.unavailable(c, err)
		return
	}
	response.OK(c, nonNil(snap.Items))
}

func (h *Handler) gallery(c *gin.Context) {
	snap, err := h.feeds.Gallery.Latest(c.Request.Context())
	if err == nil {
		err = snap.Err
	}
	if err != nil {
		h.unavailable(c, err)
		return
	}
	response.OK(c, nonNil(snap.Items))
}

func (h *Handler) unavailable(c *gin.Context, err error) {
	h.logger.Warn("site content read failed", zap.String("path", c.FullPath()), zap.Error(err))
	response.Fail(c, http.StatusServiceUnavailable, statusUnavailable)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
