package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/investleasing/leasing-portal-api/api/swagger"
	"github.com/investleasing/leasing-portal-api/internal/classify"
	"github.com/investleasing/leasing-portal-api/internal/handler"
	"github.com/investleasing/leasing-portal-api/internal/middleware"
	"github.com/investleasing/leasing-portal-api/internal/registry"
	"github.com/investleasing/leasing-portal-api/internal/remote"
	"github.com/investleasing/leasing-portal-api/internal/repository"
	"github.com/investleasing/leasing-portal-api/internal/service"
	"github.com/investleasing/leasing-portal-api/pkg/cache"
	"github.com/investleasing/leasing-portal-api/pkg/config"
	"github.com/investleasing/leasing-portal-api/pkg/database"
	"github.com/investleasing/leasing-portal-api/pkg/export"
	"github.com/investleasing/leasing-portal-api/pkg/logger"
	corsmiddleware "github.com/investleasing/leasing-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/investleasing/leasing-portal-api/pkg/middleware/requestid"
	"github.com/investleasing/leasing-portal-api/pkg/storage"
)

// @title Leasing Portal API
// @version 1.0.0
// @description Customer portal backend with FTP document synchronization
// @BasePath /api/v1
// @schemes http

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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and sync guard degraded", "error", err)
		redisClient = nil
	}

	scratch, err := storage.NewScratchStore(cfg.Sync.UploadsDir, classify.CategoryDirs())
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	dialer := remote.NewDialer(cfg.FTP, logr)
	loader := registry.NewLoader(dialer, scratch, cfg.Sync.RegistryPath, logr)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	paymentRepo := repository.NewPaymentScheduleRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	profileSvc := service.NewProfileService(profileRepo, userRepo, paymentRepo, loader, cacheRepo, logr)
	authSvc := service.NewAuthService(userRepo, profileSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	syncSvc := service.NewSyncService(userRepo, documentRepo, paymentRepo, cacheRepo, profileSvc, loader, dialer, scratch, metricsSvc, logr, cfg.Sync)
	documentSvc := service.NewDocumentService(documentRepo, scratch, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Exports.Enabled, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	syncHandler := handler.NewSyncHandler(syncSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			protected.GET("/profile", profileHandler.Get)
			protected.POST("/profile/load", profileHandler.Load)

			protected.POST("/documents/sync", syncHandler.Sync)
			protected.GET("/documents/contracts", documentHandler.ListContracts)
			protected.GET("/documents/acts", documentHandler.ListActs)
			protected.GET("/documents/invoices", documentHandler.ListInvoices)
			protected.GET("/documents/others", documentHandler.ListOthers)
			protected.GET("/documents/download", documentHandler.Download)

			protected.GET("/payments", paymentHandler.List)
			protected.GET("/payments/export", paymentHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
