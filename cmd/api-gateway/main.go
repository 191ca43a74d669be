package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cybrella/cybrella-api/api/swagger"
	"github.com/cybrella/cybrella-api/internal/handler"
	"github.com/cybrella/cybrella-api/internal/middleware"
	"github.com/cybrella/cybrella-api/internal/models"
	"github.com/cybrella/cybrella-api/internal/repository"
	"github.com/cybrella/cybrella-api/internal/service"
	"github.com/cybrella/cybrella-api/internal/sheets"
	"github.com/cybrella/cybrella-api/internal/sheetsync"
	"github.com/cybrella/cybrella-api/pkg/cache"
	"github.com/cybrella/cybrella-api/pkg/config"
	"github.com/cybrella/cybrella-api/pkg/database"
	"github.com/cybrella/cybrella-api/pkg/logger"
	corsmiddleware "github.com/cybrella/cybrella-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cybrella/cybrella-api/pkg/middleware/requestid"
	"github.com/cybrella/cybrella-api/pkg/storage"
)

// @title Cybrella API
// @version 1.0.0
// @description Festival registration backend with spreadsheet ledger sync
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, content cache disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	// Ledger wiring. When sheets are disabled the syncer is nil and every
	// registration mutation skips the mirror step.
	var syncer *sheetsync.Syncer
	if cfg.Sheets.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		ledger, err := sheets.NewClient(ctx, cfg.Sheets)
		cancel()
		if err != nil {
			logr.Sugar().Fatalw("failed to init sheets client", "error", err)
		}
		syncer = sheetsync.NewSyncer(ledger, logr, metricsSvc)
	}

	var store storage.ObjectStore
	var localStore *storage.LocalStorage
	switch cfg.Uploads.Driver {
	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		store, err = storage.NewMinioStorage(ctx, cfg.Uploads)
		cancel()
		if err != nil {
			logr.Sugar().Fatalw("failed to init minio storage", "error", err)
		}
	default:
		localStore, err = storage.NewLocalStorage(cfg.Uploads.StorageDir, cfg.Uploads.PublicURL)
		if err != nil {
			logr.Sugar().Fatalw("failed to init local storage", "error", err)
		}
		store = localStore
	}

	regRepo := repository.NewRegistrationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	sponsorRepo := repository.NewSponsorRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	regSvc := service.NewRegistrationService(regRepo, syncerOrNoop(syncer, logr), validate, logr)
	eventSvc := service.NewEventService(eventRepo, cacheRepo, validate, logr)
	sponsorSvc := service.NewSponsorService(sponsorRepo, cacheRepo, validate, logr)
	contentSvc := service.NewContentService(eventRepo, sponsorRepo, cacheRepo, metricsSvc, cfg.Content.CacheTTL, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	uploadSvc := service.NewUploadService(store, cfg.Uploads.AllowedFolders, cfg.Uploads.DefaultFolder, cfg.Uploads.MaxFileSizeBytes, logr)

	regHandler := handler.NewRegistrationHandler(regSvc, logr)
	eventHandler := handler.NewEventHandler(eventSvc, contentSvc)
	sponsorHandler := handler.NewSponsorHandler(sponsorSvc, contentSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	uploadHandler := handler.NewUploadHandler(uploadSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if localStore != nil {
		r.Static("/uploads", localStore.Dir())
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/events", eventHandler.List)
		api.GET("/events/:slug", eventHandler.Get)
		api.GET("/categories", eventHandler.ListCategories)
		api.GET("/sponsors", sponsorHandler.List)
		api.GET("/sponsor-tiers", sponsorHandler.ListTiers)
		api.POST("/registrations", regHandler.Create)
		api.POST("/upload", uploadHandler.Upload)
		api.GET("/files", uploadHandler.List)
		api.POST("/auth/login", authHandler.Login)

		admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
		{
			admin.GET("/auth/me", authHandler.Me)

			admin.GET("/registrations", regHandler.List)
			admin.PATCH("/registrations/:id/status", regHandler.UpdateStatus)
			admin.DELETE("/registrations/:id", regHandler.Delete)
			admin.POST("/registrations/resync", regHandler.Resync)
			admin.GET("/registrations/export", regHandler.Export)

			admin.POST("/events", eventHandler.Create)
			admin.PUT("/events/:id", eventHandler.Update)
			admin.DELETE("/events/:id", eventHandler.Delete)
			admin.POST("/categories", eventHandler.CreateCategory)
			admin.DELETE("/categories/:id", eventHandler.DeleteCategory)

			admin.POST("/sponsors", sponsorHandler.Create)
			admin.PUT("/sponsors/:id", sponsorHandler.Update)
			admin.DELETE("/sponsors/:id", sponsorHandler.Delete)
			admin.POST("/sponsor-tiers", sponsorHandler.CreateTier)
			admin.DELETE("/sponsor-tiers/:id", sponsorHandler.DeleteTier)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "sheets_enabled", cfg.Sheets.Enabled)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// syncerOrNoop keeps the registration service simple when sheets are
// disabled in configuration.
func syncerOrNoop(s *sheetsync.Syncer, logr *zap.Logger) service.LedgerSyncer {
	if s != nil {
		return s
	}
	return noopSyncer{logger: logr}
}

type noopSyncer struct {
	logger *zap.Logger
}

func (n noopSyncer) Append(_ context.Context, reg models.Registration) error {
	n.logger.Debug("ledger disabled, skipping append", zap.String("registration_id", reg.ID))
	return nil
}

func (n noopSyncer) UpdateStatus(_ context.Context, id string, _ models.RegistrationStatus, _ string) error {
	n.logger.Debug("ledger disabled, skipping status update", zap.String("registration_id", id))
	return nil
}

func (n noopSyncer) Delete(_ context.Context, id, _ string) error {
	n.logger.Debug("ledger disabled, skipping delete", zap.String("registration_id", id))
	return nil
}

func (n noopSyncer) Rebuild(_ context.Context, regs []models.Registration) error {
	n.logger.Debug("ledger disabled, skipping rebuild", zap.Int("count", len(regs)))
	return nil
}
