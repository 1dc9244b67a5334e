package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blog-content-api/internal/api"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/kvstore"
	"github.com/blog-content-api/internal/render"
	"github.com/blog-content-api/internal/store"
	"github.com/blog-content-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Blog Content API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Rebuild the logger from the loaded configuration
	log = logger.NewWithOptions(cfg.Log.Level, cfg.Log.Format)

	// Initialize key-value store
	kv, err := kvstore.New(&cfg.KV, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to key-value store")
	}
	defer kv.Close()

	// Initialize stores
	articles := store.NewArticleStore(kv, cfg.Blog, log)
	admins := store.NewAdminDirectory(kv, log)

	if err := admins.EnsureDefaultAdmin(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default admin")
	}

	// Initialize theme template fetcher
	fetcher := render.NewFetcher(cfg.Blog.TemplateTimeout, cfg.Blog.TemplateCacheTTL, log)

	// Initialize router
	router := api.NewRouter(articles, admins, fetcher, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("kv_driver", cfg.KV.Driver).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
