package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propmedia/pkg/cache"
	"propmedia/pkg/config"
	"propmedia/pkg/events"
	"propmedia/pkg/jwt"
	"propmedia/pkg/logger"
	"propmedia/pkg/middleware"
	"propmedia/pkg/queue"
	webHTTP "propmedia/services/web/internal/controller/http"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/session"
	"propmedia/services/web/internal/usecase"
	"propmedia/services/web/internal/view"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "propmedia/services/web/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	redisClient *redis.Client
	queueClient *queue.Client
	api         *remote.Client
	sessions    *session.Manager
	hub         *events.Hub
	bridge      *events.RedisBridge
	views       *view.Registry
	httpServer  *http.Server
	cancel      context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()
	log.SetDebug(!cfg.IsProduction())

	// Sessions, rate limits and submit tokens all live in redis.
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := view.RegisterValidations(v); err != nil {
			return nil, fmt.Errorf("failed to register validations: %w", err)
		}
	}

	origin := uuid.NewString()
	bus := events.NewBus(log)
	bridge := events.NewRedisBridge(redisClient, origin, log)
	sinks := []events.Sink{bridge}
	if queueClient != nil {
		sinks = append(sinks, queueClient)
	}

	api := remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, log)
	sessions := session.NewManager(
		session.NewRedisStore(redisClient),
		api,
		jwt.NewService(cfg.JWTSecret, cfg.SessionTTL),
		session.Options{TTL: cfg.SessionTTL, RevalidateAfter: cfg.SessionRevalidateAfter},
		log,
	)
	api.OnUnauthorized(sessions.InvalidateFromContext)

	return &App{
		cfg:         cfg,
		log:         log,
		redisClient: redisClient,
		queueClient: queueClient,
		api:         api,
		sessions:    sessions,
		hub:         events.NewHub(bus, origin, log, sinks...),
		bridge:      bridge,
		views:       view.NewRegistry(),
	}, nil
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.bridge.Start(ctx, a.hub.Bus()); err != nil {
		a.log.Error("Failed to subscribe to post events: %v (changes from other instances will not be seen)", err)
	}

	renderer, err := webHTTP.NewRenderer()
	if err != nil {
		return err
	}
	media := view.NewMediaResolver(a.cfg.MediaBaseURL)

	// Initialize use cases
	postUseCase := usecase.NewPostUseCase(a.api, a.api, usecase.NewSubmitGuard(a.redisClient), a.hub, a.log)
	moderationUseCase := usecase.NewModerationUseCase(a.api, a.hub, a.log)
	contactUseCase := usecase.NewContactUseCase(a.api, a.log)

	// Initialize HTTP handlers
	secure := a.cfg.CookieSecure
	handlers := webHTTP.Handlers{
		Auth:       webHTTP.NewAuthHandler(renderer, a.sessions, secure, a.log),
		Public:     webHTTP.NewPublicHandler(renderer, a.sessions, secure, postUseCase, media, a.log),
		Posts:      webHTTP.NewPostHandler(renderer, a.sessions, secure, postUseCase, a.views, media, a.log),
		Moderation: webHTTP.NewModerationHandler(renderer, a.sessions, secure, moderationUseCase, media, a.log),
		Contacts:   webHTTP.NewContactHandler(renderer, a.sessions, secure, contactUseCase, a.log),
		Stream:     webHTTP.NewStreamHandler(renderer, postUseCase, a.hub.Bus(), a.hub, a.views, media, a.log),
	}

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.RequestID())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := a.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			status = "degraded"
		}
		c.JSON(200, gin.H{"status": status, "live_views": a.views.Len()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	webHTTP.RegisterRoutes(r, handlers,
		webHTTP.SessionLoader(a.sessions, secure, a.log),
		webHTTP.Limits{Redis: a.redisClient, Login: a.cfg.LoginRateLimit, Assist: a.cfg.AIRateLimit},
	)

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Web front end starting on port %s (API %s)", a.cfg.ServerPort, a.cfg.APIBaseURL)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down web front end...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Live streams end first so the server is not kept waiting on them.
	a.views.Close()
	if a.cancel != nil {
		a.cancel()
	}

	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	a.log.Info("Web front end exited")
	return shutdownErr
}
