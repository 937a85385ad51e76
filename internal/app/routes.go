package app

import (
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/middleware"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/chrome"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/gateway"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/office"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/site"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/response"
)

const (
	credentialLimit  = 10
	credentialWindow = time.Minute
)

func (a *App) registerRoutes(c components) {
	r := a.router

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx)
	})
	r.NoMethod(func(ctx *gin.Context) {
		response.Fail(ctx, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.StaticFS("/static", a.staticFS())
	gateway.RegisterRoutes(r, a.hub)
	chrome.NewHandler().RegisterRoutes(r)

	optional := middleware.OptionalAuth(c.sessions)
	required := middleware.Auth(c.sessions)

	authHandler := auth.NewHandler(c.provider, c.sessions, c.states, c.renderer, a.logger.Named("Auth"))
	authHandler.RegisterRoutes(r, middleware.RateLimit(c.limiter, "auth", credentialLimit, credentialWindow, authHandler.RateLimited))

	office.NewHandler(c.office, c.feeds, c.renderer, a.logger.Named("Office")).
		RegisterRoutes(r, optional, required, middleware.Idempotence(a.backends.rc))

	site.NewHandler(c.feeds, c.renderer, a.hub, a.logger.Named("Site")).
		RegisterRoutes(r, optional, c.cache.Handler())

	r.GET("/office/api/system", required, a.system)
}

// staticFS serves paths.static from disk when that directory exists, the
// bundled assets otherwise.
func (a *App) staticFS() http.FileSystem {
	dir := a.cfg.StaticDir()
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		a.logger.Info("serving static assets from disk", zap.String("dir", dir))
		return gin.Dir(dir, false)
	}
	var assets fs.FS = render.Static()
	return http.FS(assets)
}

func (a *App) system(c *gin.Context) {
	response.OK(c, gin.H{
		"uptime": a.Uptime(),
		"env":    a.cfg.Env,
		"clients": gin.H{
			"web":    a.hub.ClientCount(gateway.NamespaceWeb),
			"office": a.hub.ClientCount(gateway.NamespaceOffice),
		},
		"jobs": a.sched.List(),
	})
}
