package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/story-crafter/internal/config"
	"github.com/jwebster45206/story-crafter/internal/handlers"
	"github.com/jwebster45206/story-crafter/internal/logger"
	"github.com/jwebster45206/story-crafter/internal/middleware"
	"github.com/jwebster45206/story-crafter/internal/queue"
	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/catalogue"
	"github.com/jwebster45206/story-crafter/pkg/character"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Story Crafter API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"catalogue_dir", cfg.CatalogueDir,
		"seed", cfg.Seed)

	cat, err := loadCatalogue(cfg)
	if err != nil {
		log.Error("Failed to load catalogue", "error", err)
		os.Exit(1)
	}
	log.Info("Catalogue loaded",
		"plot_points", len(cat.PlotPoints),
		"meta_plot_points", len(cat.MetaPlotPoints),
		"sides", cat.Actors.SideNames())
	if _, ok := cat.Actors.Sides[cfg.DefaultSide]; !ok {
		log.Error("Default side is not in the catalogue", "side", cfg.DefaultSide, "sides", cat.Actors.SideNames())
		os.Exit(1)
	}

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.StorageTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	poolQueue := queue.NewPoolQueue(store.Client())
	builder := plot.NewBuilder(cat.Plot, character.NewGenerator(cat.Characters))

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, cat, log)
	mux.Handle("/health", healthHandler)

	storyHandler := handlers.NewStoryHandler(store, builder, handlers.SeededSources(cfg.Seed), log)
	mux.Handle("/v1/stories", storyHandler)
	mux.Handle("/v1/stories/", storyHandler)

	poolHandler := handlers.NewPoolHandler(store, poolQueue, cat.Actors, handlers.PoolOptions{
		Config:      cfg.PoolConfig(),
		DefaultSide: cfg.DefaultSide,
		Seed:        cfg.Seed,
	}, log)
	mux.Handle("/v1/pools", poolHandler)
	mux.Handle("/v1/pools/", poolHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

func loadCatalogue(cfg *config.Config) (*catalogue.Catalogue, error) {
	if cfg.CatalogueDir == "" {
		return catalogue.Default()
	}
	slog.Info("Loading catalogue from directory", "dir", cfg.CatalogueDir)
	return catalogue.LoadDir(cfg.CatalogueDir)
}
