package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kindredgraph/kindred/internal/config"
	"github.com/kindredgraph/kindred/internal/server"
	"github.com/kindredgraph/kindred/internal/storage"
	"github.com/kindredgraph/kindred/internal/storage/postgres"
	"github.com/kindredgraph/kindred/internal/storage/sqlite"
)

func main() {
	// Parse command line flags
	datasetsPath := flag.String("datasets", "", "Path to datasets config file (default: config/datasets.json)")
	flag.Parse()

	// If no datasets path specified, use default if it exists
	if *datasetsPath == "" {
		defaultPath := "config/datasets.json"
		if _, err := os.Stat(defaultPath); err == nil {
			*datasetsPath = defaultPath
			log.Printf("Using datasets config: %s", defaultPath)
		}
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, _ := server.Start(ctx, cfg, store, *datasetsPath)
	log.Printf("Kindred running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore opens the record store named by the configured storage engine.
func openStore(cfg *config.Config) (storage.RecordStore, error) {
	if cfg.Storage.StorageEngine == "postgres" {
		return postgres.NewRecordStore(cfg.Storage.PostgresDSN)
	}

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, err
	}
	return sqlite.NewRecordStore(cfg.Storage.DataPath + "/kindred.db")
}
