package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schoolfin/voucher/internal/application/document"
	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/cache"
	"github.com/schoolfin/voucher/internal/infrastructure/caseapi"
	"github.com/schoolfin/voucher/internal/infrastructure/config"
	"github.com/schoolfin/voucher/internal/infrastructure/logger"
	"github.com/schoolfin/voucher/internal/infrastructure/persistence"
	"github.com/schoolfin/voucher/internal/infrastructure/printing"
	"github.com/schoolfin/voucher/internal/infrastructure/scheduler"
	"github.com/schoolfin/voucher/internal/infrastructure/storage"
	"github.com/schoolfin/voucher/internal/infrastructure/telemetry"
	"github.com/schoolfin/voucher/internal/interfaces/http/handler"
	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
	"github.com/schoolfin/voucher/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Version: version,
		Env:     cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting voucher service",
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	otelProviders, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = otelProviders.Shutdown(context.Background())
	}()
	metrics, err := telemetry.NewGenerationMetrics(otelProviders.Meter())
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	// Generation history: database when configured, memory otherwise
	jobs, db := newJobRepository(cfg, log)
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
	}

	// Artifact storage
	artifacts, fsStorage := newArtifactStorage(ctx, cfg, log)

	// Artifact cache
	artifactCache, err := cache.NewArtifactCacheFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create artifact cache", zap.Error(err))
	}
	defer func() {
		_ = artifactCache.Close()
	}()

	// Editing sessions
	drafts := cache.NewInMemoryDraftStore(cfg.Draft.TTL, cfg.Draft.CleanupInterval)
	defer func() {
		_ = drafts.Close()
	}()

	// Raster capture
	capturer := newCapturer(cfg, log)
	defer func() {
		if err := capturer.Close(); err != nil {
			log.Error("Error closing capturer", zap.Error(err))
		}
	}()

	var engineOpts []printing.TemplateEngineOption
	if cfg.Capture.FontCSSURL != "" {
		engineOpts = append(engineOpts, printing.WithFontStylesheet(cfg.Capture.FontCSSURL))
	}
	templates, err := printing.NewTemplateEngine(engineOpts...)
	if err != nil {
		log.Fatal("Failed to load page templates", zap.Error(err))
	}

	// Case backend
	cases, err := caseapi.NewClient(cfg.CaseAPI, caseapi.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create case API client", zap.Error(err))
	}

	deps := document.Deps{
		Renderer:  templates,
		Capturer:  capturer,
		Assembler: printing.NewGofpdfAssembler(log),
		Storage:   artifacts,
		Jobs:      jobs,
		Drafts:    drafts,
		Cache:     artifactCache,
		Cases:     cases,
		Metrics:   metrics,
		Logger:    log,
	}
	documentService := document.NewDocumentService(deps, document.Config{
		CaptureTimeout:    cfg.Capture.Timeout,
		Scale:             cfg.Capture.Scale,
		FontFamily:        cfg.Capture.FontFamily,
		ImageFormat:       printing.ImageFormat(cfg.Capture.ImageFormat),
		JPEGQuality:       cfg.Capture.JPEGQuality,
		CacheTTL:          cfg.Redis.CacheTTL,
		RedirectDownloads: cfg.Storage.Type == "s3",
	})

	// Background cleanup of old local artifacts
	if fsStorage != nil && cfg.Storage.LocalRetention > 0 {
		retention := cfg.Storage.LocalRetention
		janitor, err := scheduler.NewJanitor(scheduler.DefaultJanitorConfig(), log, scheduler.Task{
			Name: "artifact-retention",
			Run: func(ctx context.Context) (int, error) {
				return fsStorage.CleanupOlderThan(ctx, retention)
			},
		})
		if err != nil {
			log.Fatal("Failed to create janitor", zap.Error(err))
		}
		if err := janitor.Start(ctx); err != nil {
			log.Fatal("Failed to start janitor", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := janitor.Stop(stopCtx); err != nil {
				log.Error("Error stopping janitor", zap.Error(err))
			}
		}()
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Server spans
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowedOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rlCfg := middleware.DefaultRateLimiterConfig()
		rlCfg.RequestsPerSecond = cfg.HTTP.RateLimitRPS
		rlCfg.Burst = cfg.HTTP.RateLimitBurst
		rateLimiter := middleware.NewRateLimiter(rlCfg)
		defer rateLimiter.Close()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	// Health check endpoint (outside API versioning)
	var pinger handler.Pinger
	if db != nil {
		pinger = db
	}
	handler.RegisterHealth(engine, handler.NewHealthHandler(cfg.App.Name, version, pinger))

	documentHandler := handler.NewDocumentHandler(documentService)
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.DocTypeRoutes(documentHandler)).
		Register(handler.DocumentRoutes(documentHandler, cfg.HTTP.GenerateTimeout)).
		Register(handler.DraftRoutes(handler.NewDraftHandler(documentService), cfg.HTTP.GenerateTimeout)).
		Register(handler.GenerationRoutes(handler.NewGenerationHandler(documentService))).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newJobRepository opens the job database when a driver is configured. The
// returned Database is nil for the in-memory repository.
func newJobRepository(cfg *config.Config, log *zap.Logger) (voucher.GenerationJobRepository, *persistence.Database) {
	if cfg.Database.Driver == "" {
		log.Info("No database configured, keeping generation history in memory")
		return persistence.NewInMemoryGenerationJobRepository(1000), nil
	}

	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         cfg.Database.LogLevel,
		SlowThreshold: cfg.Database.SlowQueryThreshold,
	})
	opts := []persistence.Option{persistence.WithGormLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		opts = append(opts, persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled: true,
			DBName:  cfg.Database.DBName,
		}, log))
	}

	db, err := persistence.NewDatabase(&cfg.Database, opts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))
	return persistence.NewGormGenerationJobRepository(db.DB), db
}

// newArtifactStorage returns the configured PDF store. The file system
// store is also returned on its own so old files can be swept.
func newArtifactStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (printing.ArtifactStorage, *printing.FileSystemStorage) {
	if cfg.Storage.Type == "s3" {
		s3, err := storage.NewS3ArtifactStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create S3 storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare S3 bucket", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		log.Info("Storing PDFs in S3", zap.String("bucket", s3.Bucket()))
		return s3, nil
	}

	fs, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: cfg.Storage.LocalPath,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to create local storage", zap.Error(err))
	}
	log.Info("Storing PDFs on disk", zap.String("path", cfg.Storage.LocalPath))
	return fs, fs
}

func newCapturer(cfg *config.Config, log *zap.Logger) printing.RasterCapturer {
	if cfg.Capture.Backend == "wkhtmltoimage" {
		c, err := printing.NewWkhtmltoimageCapturer(&printing.WkhtmltoimageConfig{
			BinaryPath:     cfg.Capture.BinaryPath,
			DefaultTimeout: cfg.Capture.Timeout,
			Scale:          cfg.Capture.Scale,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to create wkhtmltoimage capturer", zap.Error(err))
		}
		log.Warn("wkhtmltoimage cannot confirm font loading; PDFs may use fallback fonts")
		return c
	}

	c, err := printing.NewChromedpCapturer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Capture.Timeout,
		RemoteURL:      cfg.Capture.RemoteURL,
		NoSandbox:      cfg.Capture.NoSandbox,
		Scale:          cfg.Capture.Scale,
		MaxConcurrent:  cfg.Capture.MaxConcurrent,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to create chromedp capturer", zap.Error(err))
	}
	return c
}
