package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/composition"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/store"

	compH "github.com/fekuna/omnipos-catalog-service/internal/composition/handler"
	compRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/composition/repository"
	compUCPkg "github.com/fekuna/omnipos-catalog-service/internal/composition/usecase"

	prodH "github.com/fekuna/omnipos-catalog-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-catalog-service/internal/product/usecase"

	varH "github.com/fekuna/omnipos-catalog-service/internal/variation/handler"
	varRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/variation/repository"
	varUCPkg "github.com/fekuna/omnipos-catalog-service/internal/variation/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Open Storage
	db, err := store.Open(&store.Config{
		Path:       cfg.Storage.Path,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Could not open storage", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Storage ready", zap.String("path", cfg.Storage.Path), zap.Bool("in_memory", cfg.Storage.InMemory))

	// 4. Initialize Repositories
	prodRepo := prodRepoPkg.NewStoreRepository(db)
	varRepo := varRepoPkg.NewStoreRepository(db)
	compRepo := compRepoPkg.NewStoreRepository(db)

	// 5. Initialize UseCases
	limits := composition.Limits{
		MaxDepth:  cfg.Engine.MaxDepth,
		WarnDepth: cfg.Engine.WarnDepth,
		WarnItems: cfg.Engine.WarnItems,
		MaxItems:  cfg.Engine.MaxItems,
	}
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, varRepo, compRepo, appLogger)
	varUC := varUCPkg.NewVariationUseCase(varRepo, prodRepo, compRepo, appLogger)
	compUC := compUCPkg.NewCompositionUseCase(compRepo, prodRepo, varRepo, limits, appLogger)

	// 6. Initialize Handlers
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	varHandler := varH.NewVariationHandler(varUC, appLogger)
	compHandler := compH.NewCompositionHandler(compUC, appLogger)

	// 7. Routes
	if cfg.Server.AppEnv != "dev" && cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		products := api.Group("/products")
		{
			products.POST("", prodHandler.Create)
			products.GET("", prodHandler.List)
			products.GET("/:sku", prodHandler.Get)
			products.PUT("/:sku", prodHandler.Update)
			products.DELETE("/:sku", prodHandler.Delete)
			products.GET("/:sku/finish-checks", prodHandler.FinishChecks)

			products.POST("/:sku/variation-items", varHandler.CreateItem)
			products.GET("/:sku/variation-items", varHandler.ListItems)
			products.POST("/:sku/variation-items/generate", varHandler.GenerateItems)
			products.PUT("/:sku/variation-items/reorder", varHandler.ReorderItems)

			products.POST("/:sku/composition-items", compHandler.CreateItem)
			products.GET("/:sku/composition-items", compHandler.ListItems)
			products.GET("/:sku/weight", compHandler.CalculateWeight)
			products.GET("/:sku/tree", compHandler.Tree)
			products.GET("/:sku/complexity", compHandler.Complexity)
		}

		api.POST("/variation-types", varHandler.CreateType)
		api.GET("/variation-types", varHandler.ListTypes)
		api.PUT("/variation-types/:id", varHandler.UpdateType)
		api.DELETE("/variation-types/:id", varHandler.DeleteType)

		api.POST("/variations", varHandler.CreateVariation)
		api.GET("/variations", varHandler.ListVariations)
		api.PUT("/variations/:id", varHandler.UpdateVariation)
		api.DELETE("/variations/:id", varHandler.DeleteVariation)

		api.GET("/variation-items/:id", varHandler.GetItem)
		api.PUT("/variation-items/:id", varHandler.UpdateItem)
		api.DELETE("/variation-items/:id", varHandler.DeleteItem)

		api.PUT("/composition-items/:id", compHandler.UpdateItem)
		api.DELETE("/composition-items/:id", compHandler.DeleteItem)
	}

	// 8. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:    port,
		Handler: router,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
