package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oddsline/settlement-api/internal/auth"
	"github.com/oddsline/settlement-api/internal/config"
	"github.com/oddsline/settlement-api/internal/database"
	"github.com/oddsline/settlement-api/internal/engine"
	"github.com/oddsline/settlement-api/internal/provider"
	"github.com/oddsline/settlement-api/internal/store"
	"github.com/oddsline/settlement-api/pkg/middleware"
)

// init configures logging: pretty console output outside production,
// debug level via the DEBUG environment variable.
func init() {
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	router := gin.Default()

	authService := auth.NewService(cfg.Server.JWTSecret)
	authHandlers := auth.NewGinHandlers(authService)
	if key, secret := os.Getenv("API_KEY"), os.Getenv("API_SECRET"); key != "" {
		authService.RegisterAPICredentials(key, secret)
	}

	providerClient := provider.NewClientWithConfig(provider.Config{
		BaseURL:       cfg.Provider.BaseURL,
		APIKey:        cfg.Provider.APIKey,
		Timeout:       cfg.Provider.Timeout,
		Cooldown:      cfg.Provider.Cooldown,
		MaxRetries:    cfg.Provider.MaxRetries,
		ThrottleAfter: cfg.Provider.ThrottleAfter,
	})

	settlementService := engine.NewService(providerClient, store.NewDatabase(db))
	settlementHandlers := engine.NewGinHandlers(settlementService)

	router.Use(middleware.RateLimit())
	setupRoutes(router, authService, authHandlers, settlementHandlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes wires the API surface:
// - auth: public token issuance
// - settlement reads: JWT-protected run history
// - internal: settlement trigger and prop resolution, for internal callers
func setupRoutes(
	router *gin.Engine,
	authService *auth.Service,
	authHandlers *auth.GinHandlers,
	settlementHandlers *engine.GinHandlers,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "settlement"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/token", authHandlers.GenerateTokenHandler())
		}

		settlement := v1.Group("/settlement")
		settlement.Use(middleware.JWTAuth(authService))
		{
			settlement.GET("/runs", settlementHandlers.ListRunsHandler())
			settlement.GET("/runs/:run_id", settlementHandlers.GetRunHandler())
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.JWTAuth(authService))
		{
			internal.POST("/settlement", settlementHandlers.SettleBatchHandler())
			internal.GET("/props/:provider_event_id", settlementHandlers.PropsHandler())
		}
	}
}
