// Package main runs the league management HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leaguedesk/backend/config"
	"github.com/leaguedesk/backend/internal/auth"
	"github.com/leaguedesk/backend/internal/files"
	"github.com/leaguedesk/backend/internal/middleware"
	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/organizations"
	"github.com/leaguedesk/backend/internal/players"
	"github.com/leaguedesk/backend/internal/seasons"
	"github.com/leaguedesk/backend/internal/teams"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/database"
	"github.com/leaguedesk/backend/pkg/queue"
	"github.com/leaguedesk/backend/pkg/redis"
	"github.com/leaguedesk/backend/pkg/response"
	"github.com/leaguedesk/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	blobs, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		Endpoint:        cfg.Storage.Endpoint,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	}, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	// Without Redis, orphaned logos are only logged.
	var cleanup organizations.CleanupQueue
	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, logo cleanup disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		cleanup = queue.NewQueue(rdb.Client, logger)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations and tenancy
	orgRepo := organizations.NewRepository(pool)
	resolver := tenancy.NewResolver(orgRepo, logger.Named("tenancy"))
	provisioner := organizations.NewProvisioner(organizations.ProvisionerConfig{
		Tx:        database.NewTransactor(pool),
		Store:     orgRepo,
		Blobs:     blobs,
		Cleanup:   cleanup,
		MaxLogoKB: cfg.Uploads.MaxLogoKB,
		Logger:    logger,
	})
	orgHandler := organizations.NewHandler(orgRepo, provisioner, logger)

	// Tenant-owned resources
	seasonHandler := seasons.NewHandler(seasons.NewRepository(pool), logger)
	teamHandler := teams.NewHandler(teams.NewRepository(pool), logger)
	playerHandler := players.NewHandler(players.NewRepository(pool), logger)

	fileHandler := files.NewHandler(blobs, logger, organizations.LogoNamespace+"/")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	// Multipart bodies above this spill to temp files.
	router.MaxMultipartMemory = (cfg.Uploads.MaxLogoKB + 1024) * 1024

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public logo files
	router.GET("/storage/*key", fileHandler.Get)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required, current organization resolved lazily per request)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService.Validator()), middleware.Tenant(resolver))
	{
		api.GET("/me", authHandler.Me)

		// Organizations
		api.GET("/organizations", orgHandler.ListMyOrganizations)
		api.POST("/organizations", orgHandler.CreateOrganization)
		api.GET("/organizations/current", orgHandler.Current)
		api.GET("/organizations/current/members",
			middleware.RequireMembershipRole(models.RoleGuardian, models.RoleAdmin), orgHandler.ListMembers)

		// Tenant-owned resources
		owned := api.Group("", middleware.RequireOrganization())
		owned.GET("/seasons", seasonHandler.List)
		owned.POST("/seasons", seasonHandler.Create)
		owned.GET("/seasons/:id", seasonHandler.GetByID)
		owned.GET("/teams", teamHandler.List)
		owned.POST("/teams", teamHandler.Create)
		owned.GET("/teams/:id", teamHandler.GetByID)
		owned.GET("/players", playerHandler.List)
		owned.POST("/players", playerHandler.Create)
		owned.GET("/players/:id", playerHandler.GetByID)

		// Platform administration (cross-tenant)
		admin := api.Group("/admin", middleware.RequireAdmin())
		admin.GET("/teams", teamHandler.ListAll)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, _ := config.Build()
	return logger
}
