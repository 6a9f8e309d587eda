package main

import (
	"babymassage/webapp/internal/client"
	"babymassage/webapp/internal/config"
	"babymassage/webapp/internal/session"
	"babymassage/webapp/internal/web"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}
	logger.Info("configuration loaded",
		zap.String("address", cfg.Server.Address),
		zap.String("api_base_url", cfg.API.BaseURL),
	)

	// --- Backend API client ---
	apiClient, err := client.New(cfg.API)
	if err != nil {
		logger.Fatal("could not create API client", zap.Error(err))
	}

	// --- Session store ---
	store := session.NewStore(apiClient, cfg.Session, logger)

	// --- Gin engine and routes ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	web.SetupRoutes(router, store, cfg.Upload, logger)

	// --- HTTP server ---
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: store.Wrap(router),
		// Write timeout has to cover a relayed 100MB video upload.
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
