package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/claytonbrgsdev/slack-translator-app/internal/api"
	"github.com/claytonbrgsdev/slack-translator-app/internal/composer"
	"github.com/claytonbrgsdev/slack-translator-app/internal/config"
	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	"github.com/claytonbrgsdev/slack-translator-app/internal/cursor"
	"github.com/claytonbrgsdev/slack-translator-app/internal/hub"
	"github.com/claytonbrgsdev/slack-translator-app/internal/identity"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/publisher"
	"github.com/claytonbrgsdev/slack-translator-app/internal/relay"
	"github.com/claytonbrgsdev/slack-translator-app/internal/slack"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	"github.com/claytonbrgsdev/slack-translator-app/internal/translator"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/bootstrap"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/circuitbreaker"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/health"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/middleware"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/ratelimit"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	dbConnector *bootstrap.DatabaseConnector
	redis       *redis.Client
	db          *sql.DB

	store      store.Store
	hub        *hub.Hub
	publisher  *publisher.Publisher
	slack      *slack.Client
	translator *translator.Gateway
	resolver   *identity.Resolver
	poller     *relay.Poller
	composer   *composer.Composer
	server     *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("relay-server")
	}
	return &App{
		Config:      cfg,
		Logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := config.ValidateStatic(a.Config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := a.initStore(ctx); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	if err := a.initRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	a.initPipeline(ctx)

	metrics.RegisterRelayMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}
	if a.Config.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initStore(ctx context.Context) error {
	switch a.Config.Store.Driver {
	case constants.StoreDriverPostgres:
		db, err := a.dbConnector.InitPostgreSQL(ctx)
		if err != nil {
			return err
		}
		a.db = db

		pg := store.NewPostgresStore(db, a.Config.Store.Retention)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		a.store = pg
	default:
		a.store = store.NewMemoryStore(a.Config.Store.Retention)
	}
	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb
	return nil
}

func (a *App) initPipeline(ctx context.Context) {
	a.hub = hub.New()
	a.publisher = publisher.New(a.store, a.hub, a.Logger)

	var breaker *circuitbreaker.Wrapper
	if a.Config.CircuitBreaker.Enabled {
		cbCfg := circuitbreaker.DefaultConfig("translator")
		if a.Config.CircuitBreaker.MaxRequests > 0 {
			cbCfg.MaxRequests = a.Config.CircuitBreaker.MaxRequests
		}
		if a.Config.CircuitBreaker.Interval > 0 {
			cbCfg.Interval = a.Config.CircuitBreaker.Interval
		}
		if a.Config.CircuitBreaker.Timeout > 0 {
			cbCfg.Timeout = a.Config.CircuitBreaker.Timeout
		}
		breaker = circuitbreaker.NewWrapper(cbCfg)
		a.Logger.InfowCtx(ctx, "Circuit breaker enabled for translation gateway")
	}
	a.translator = translator.NewGateway(a.Config.Translator, breaker, a.Logger)

	a.slack = slack.NewClient(a.Config.Slack)
	a.resolver = identity.NewResolver(a.slack, a.Logger)

	var seenRepo cursor.SeenRepository
	if a.redis != nil {
		seenRepo = cursor.NewRedisSeenRepository(a.redis, a.Config.Relay.Lookback)
		a.Logger.InfowCtx(ctx, "Shared dedup backend enabled")
	}
	cur := cursor.New(a.Config.Relay.Lookback, a.Config.Relay.SeenCapacity, seenRepo, a.Logger)

	a.poller = relay.NewPoller(
		a.slack,
		a.translator,
		a.resolver,
		a.publisher,
		cur,
		a.Config.Slack.ChannelID,
		a.Config.Relay.PollInterval,
		a.Logger,
	)

	a.composer = composer.New(
		a.slack,
		a.translator,
		a.resolver,
		a.publisher,
		a.Config.Slack.ChannelID,
		a.Logger,
	)
}

func (a *App) initHTTPServer() {
	if a.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))

	if a.Config.RateLimit.Enabled {
		rlCfg := ratelimit.DefaultConfig()
		if a.Config.RateLimit.RPS > 0 {
			rlCfg.RPS = a.Config.RateLimit.RPS
		}
		if a.Config.RateLimit.Burst > 0 {
			rlCfg.Burst = a.Config.RateLimit.Burst
		}
		router.Use(ratelimit.RateLimitMiddleware(rlCfg))
	}

	handler := api.NewHandler(a.store, a.composer, a.publisher, a.hub, a, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewHTTPChecker("translator", a.Config.Translator.BaseURL+"/api/tags", a.Config.Translator.ProbeTimeout))
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Static("/static", "./web/static")
	router.StaticFile("/", "./web/static/index.html")

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds,
	}
}

// Status implements the live status endpoint.
func (a *App) Status(ctx context.Context) api.Status {
	models, err := a.translator.Models(ctx)
	count, _ := a.store.Count(ctx)

	return api.Status{
		ChannelConfigured:    a.Config.Slack.Configured(),
		PollerRunning:        a.poller.Running(),
		TranslatorAvailable:  err == nil,
		TranslatorModels:     models,
		SelectedModel:        a.translator.SelectModel(ctx),
		ConnectedSubscribers: a.hub.Len(),
		StoredMessages:       count,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if a.Config.Slack.Configured() {
		g.Go(func() error {
			return a.poller.Run(gCtx)
		})
	} else {
		a.Logger.WarnwCtx(ctx, "Channel credentials missing, ingestion disabled; web app stays up",
			"required", "SLACK_API_TOKEN and SLACK_CHANNEL_ID",
		)
	}

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		a.Logger.Info("Shutting down HTTP server...")
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil {
			a.Logger.Warnw("Redis close error", "error", cerr)
		}
	}
	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil {
			a.Logger.Warnw("Database close error", "error", cerr)
		}
	}
}
