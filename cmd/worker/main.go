package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/story-crafter/internal/config"
	"github.com/jwebster45206/story-crafter/internal/logger"
	"github.com/jwebster45206/story-crafter/internal/queue"
	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/internal/worker"
	"github.com/jwebster45206/story-crafter/pkg/catalogue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Story Crafter Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"concurrency", cfg.WorkerConcurrency)

	var cat *catalogue.Catalogue
	if cfg.CatalogueDir == "" {
		cat, err = catalogue.Default()
	} else {
		cat, err = catalogue.LoadDir(cfg.CatalogueDir)
	}
	if err != nil {
		log.Error("Failed to load catalogue", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.StorageTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	poolQueue := queue.NewPoolQueue(store.Client())
	w := worker.New(poolQueue, store, cat.Actors, cfg.PoolConfig(), log, cfg.WorkerID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Worker started, waiting for jobs...", "worker_id", w.ID())
	w.Run(ctx, cfg.WorkerConcurrency)

	log.Info("Worker exited")
}
