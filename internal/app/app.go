package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
	"github.com/ummachristians-netizen/umma-christians/internal/livequery"
	"github.com/ummachristians-netizen/umma-christians/internal/middleware"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/gateway"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/live"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/office"
	"github.com/ummachristians-netizen/umma-christians/internal/modules/render"
	pkgcron "github.com/ummachristians-netizen/umma-christians/internal/pkg/cron"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/jwt"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/mail"
	"github.com/ummachristians-netizen/umma-christians/internal/pkg/session"
)

// devJWTSecret signs sessions in development when jwt_secret is unset.
const devJWTSecret = "church-dev-secret-change-me"

// App holds all application dependencies.
type App struct {
	cfg      *config.AppConfig
	router   *gin.Engine
	backends *backends
	hub      *gateway.Hub
	sched    *pkgcron.Scheduler
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// components is everything the routes need.
type components struct {
	sessions *auth.Sessions
	provider auth.Provider
	states   *auth.StateBus
	renderer *render.Renderer
	feeds    *live.Feeds
	office   *office.Service
	cache    *middleware.HTTPCache
	limiter  middleware.Counter
}

// New initializes the application: backends → auth → live feeds → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app, err := build(ctx, logger, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	app.cancel = cancel
	return app, nil
}

func build(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := livequery.NewBus()
	var notifier livequery.Notifier = bus
	if b.rc != nil {
		fanout := livequery.NewRedisFanout(bus, b.rc, logger.Named("Fanout"))
		go fanout.Run(ctx)
		notifier = fanout
	}
	b.watch(ctx, notifier)

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("jwt_secret is empty, using built-in development secret")
		secret = devJWTSecret
	}
	signer, err := jwt.NewSigner(secret)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("jwt: %w", err)
	}

	var sessionStore session.Store = session.NewMemoryStore()
	if b.rc != nil {
		sessionStore = session.NewRedisStore(b.rc)
	}
	sessions := auth.NewSessions(signer, sessionStore, cfg.Session)

	provider, err := newProvider(ctx, cfg, b, sessionStore, logger)
	if err != nil {
		b.close()
		return nil, err
	}

	states := auth.NewStateBus(b.rc, logger.Named("AuthState"))
	go states.Run(ctx)

	hub := gateway.NewHub(sessions, logger.Named("Gateway"))
	go hub.Run(ctx)

	renderer, err := render.New(time.Local)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("templates: %w", err)
	}
	activity := render.NewActivityFeed()

	feeds := live.NewFeeds(&b.Backend, logger.Named("LiveQuery"))
	feeds.Register(bus)
	feeds.Start(ctx)

	cache := middleware.NewHTTPCache(b.rc, 0)
	if b.rc != nil {
		for _, topic := range []string{livequery.TopicPrograms, livequery.TopicEvents, livequery.TopicGallery, livequery.TopicSiteConfig} {
			bus.Register(topic, cache)
		}
	}

	publisher := live.NewPublisher(feeds, hub, renderer, activity, logger.Named("Publisher"))
	if err := publisher.Start(ctx); err != nil {
		b.close()
		return nil, fmt.Errorf("publisher: %w", err)
	}

	states.Subscribe(func(change auth.StateChange) {
		publisher.PushAuthState(change.SessionID, change.State)
	})

	svc := office.NewService(office.Options{
		Backend:    &b.Backend,
		Gallery:    cfg.Gallery,
		Activity:   activity,
		Notifier:   notifier,
		OnActivity: publisher.PushActivity,
		Logger:     logger.Named("Office"),
	})

	var limiter middleware.Counter = middleware.NewMemoryCounter()
	if b.rc != nil {
		limiter = middleware.NewRedisCounter(b.rc)
	}

	sched := pkgcron.New(logger.Named("CronService"))
	registerCronJobs(sched, cfg, feeds)
	sched.Start(ctx)

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	app := &App{cfg: cfg, router: router, backends: b, hub: hub, sched: sched, logger: logger}
	app.registerRoutes(components{
		sessions: sessions,
		provider: provider,
		states:   states,
		renderer: renderer,
		feeds:    feeds,
		office:   svc,
		cache:    cache,
		limiter:  limiter,
	})
	return app, nil
}

func newProvider(ctx context.Context, cfg *config.AppConfig, b *backends, tokens session.Store, logger *zap.Logger) (auth.Provider, error) {
	if cfg.Backends.Auth == config.AuthFirebase {
		admin, err := b.fb.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase auth: %w", err)
		}
		return auth.NewFirebaseProvider(cfg.Firebase.WebAPIKey, admin), nil
	}

	var users auth.UserStore = auth.NewMemoryUsers()
	if b.db != nil {
		users = auth.NewGormUsers(b.db)
	} else {
		logger.Warn("local auth without mysql keeps office accounts in memory")
	}
	mailer := mail.New(mail.FromAppConfig(cfg.Mail))
	return auth.NewLocalProvider(users, tokens, mailer, cfg.SiteURL, logger.Named("Auth")), nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines and closes backend connections.
func (a *App) Shutdown() {
	a.cancel()
	a.backends.close()
}

// Uptime reports how long the process has been serving.
func (a *App) Uptime() string { return humanizeDuration(time.Since(processStart)) }

var processStart = time.Now()
