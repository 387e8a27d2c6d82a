package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"docmanager/docs"
	"docmanager/internal/config"
	"docmanager/internal/database"
	"docmanager/internal/database/migration"
	handlers "docmanager/internal/http/handler"
	"docmanager/internal/http/middleware"
	"docmanager/internal/logger"
	"docmanager/internal/metrics"
	tracing "docmanager/internal/otel"
	"docmanager/internal/repository/postgres"
	"docmanager/internal/service"
	"docmanager/internal/session"
	"docmanager/internal/storage"
)

// @title						Document Manager API
// @version					1.0
// @description				Upload, search, download and delete documents filed under offices.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config is not known yet
		zap.NewExample().Fatal("config_load_failed", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("logger_init_failed", zap.Error(err))
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database_connect_failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		dsn, err := database.BuildPostgresDSN(cfg.Database)
		if err != nil {
			log.Fatal("database_dsn_invalid", zap.Error(err))
		}
		if err := migration.Up(ctx, dsn, log); err != nil {
			log.Fatal("database_migration_failed", zap.Error(err))
		}
	}

	blobs, err := storage.Open(cfg)
	if err != nil {
		log.Fatal("blob_store_init_failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	docMetrics, err := metrics.NewDocuments(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	acc := database.NewAccessor(db)
	docSvc := service.NewDocumentService(blobs, postgres.NewDocumentPostgres(acc),
		service.WithLogger(log.Named("documents")),
		service.WithMetrics(docMetrics),
	)
	officeSvc := service.NewOfficeService(postgres.NewOfficePostgres(acc))
	userSvc := service.NewUserService(postgres.NewUserPostgres(acc), 0)

	tokens, err := session.NewTokens(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatal("auth_init_failed", zap.Error(err))
	}
	sessions := newSessionStore(ctx, cfg.Redis, log)
	authSvc := service.NewAuthService(userSvc, sessions, tokens, cfg.Auth.TokenTTL, log.Named("auth"))

	if cfg.Auth.AdminUsername != "" && cfg.Auth.AdminPassword != "" {
		created, err := userSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal("admin_bootstrap_failed", zap.Error(err))
		}
		if created {
			log.Info("admin_created", zap.String("username", cfg.Auth.AdminUsername))
		}
	}

	if _, err := docSvc.Refresh(ctx); err != nil {
		log.Warn("document_cache_warmup_failed", zap.Error(err))
	}

	maxUpload := cfg.Blob.MaxUploadBytes()
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// room for multipart framing and the other form fields
		BodyLimit: int(maxUpload) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		app.Use(cors.New(corsConfig(cfg.CORS)))
	}
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.Named("http")))

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}
	app.Use(prom.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:                 db,
		Documents:          docSvc,
		Offices:            officeSvc,
		Users:              userSvc,
		Auth:               authSvc,
		MaxUploadBytes:     maxUpload,
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
		Log:                log.Named("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server_listening", zap.String("addr", addr), zap.String("blob_driver", cfg.Blob.Driver))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server_failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("server_shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("tracing_shutdown_failed", zap.Error(err))
	}
}

// newSessionStore uses Redis when configured and reachable, otherwise process memory.
func newSessionStore(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) session.Store {
	if cfg.Addr == "" {
		log.Info("session_store", zap.String("driver", "memory"))
		return session.NewMemoryStore()
	}

	rc := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		log.Fatal("session_store_unreachable", zap.String("addr", cfg.Addr), zap.Error(err))
	}
	log.Info("session_store", zap.String("driver", "redis"), zap.String("addr", cfg.Addr))
	return session.NewRedisStore(rc)
}

// corsConfig is only used with a non-empty origin list; without one the API stays same-origin.
func corsConfig(cfg config.CORSConfig) cors.Config {
	return cors.Config{
		AllowOrigins:  strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	}
}
