// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/invsim/internal/api"
	"github.com/andresuchdata/invsim/internal/cache"
	"github.com/andresuchdata/invsim/internal/config"
	"github.com/andresuchdata/invsim/internal/service"
	"github.com/andresuchdata/invsim/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Result cache falls back to noop when Redis is unreachable
	resultCache, err := cache.NewResultCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Result cache unavailable, continuing without cache")
		resultCache = cache.NewNoopResultCache()
	}
	defer resultCache.Close()

	// Initialize services
	opts, err := service.OptionsFromConfig(cfg.Simulation)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid simulation defaults")
	}
	simulationService := service.NewSimulationService(resultCache, opts)

	if cfg.Cache.FlushOnStart {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 10*time.Second)
		if err := simulationService.FlushCache(flushCtx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush result cache on start")
		}
		cancelFlush()
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{SimulationService: simulationService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Bool("cache", cfg.Cache.Enabled).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
