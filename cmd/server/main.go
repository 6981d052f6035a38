package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"meucarrim/internal/auth"
	"meucarrim/internal/config"
	cronrunner "meucarrim/internal/cron"
	"meucarrim/internal/db"
	"meucarrim/internal/handler"
	"meucarrim/internal/logger"
	gormrepository "meucarrim/internal/repository/gorm"
	"meucarrim/internal/service"
)

func main() {
	cfgPath := os.Getenv("MC_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("MC_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	tokens := &auth.TokenManager{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
	}
	statsService := &service.PriceStatsService{Repo: store}
	locatorService := &service.MarketLocatorService{Repo: store}
	maintenanceService := &service.MaintenanceService{
		Repo:   store,
		Logger: logger,
		Config: cfg.Retention,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(auth.RequireAuth(store, tokens, cfg.Auth.Disabled))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	userHandler := &handler.UserHandler{Repo: store, Tokens: tokens}
	userHandler.Register(engine)
	categoryHandler := &handler.CategoryHandler{Repo: store}
	categoryHandler.Register(engine)
	productHandler := &handler.ProductHandler{Repo: store}
	productHandler.Register(engine)
	marketHandler := &handler.MarketHandler{
		Repo:    store,
		Locator: locatorService,
		Geo:     cfg.Geo,
	}
	marketHandler.Register(engine)
	priceHandler := &handler.PriceHandler{
		Repo:  store,
		Stats: statsService,
		Cfg:   cfg.Stats,
	}
	priceHandler.Register(engine)
	listHandler := &handler.ShoppingListHandler{Repo: store}
	listHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add(cfg.Cron.Retention, func(ctx context.Context) {
			if err := maintenanceService.PruneObservations(ctx); err != nil {
				logger.Warn("observation retention failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register retention failed", zap.Error(err))
		}
		_, err = cronRunner.Add(cfg.Cron.DailySummary, func(ctx context.Context) {
			maintenanceService.LogDailySummary(ctx)
		})
		if err != nil {
			logger.Warn("cron register daily summary failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
