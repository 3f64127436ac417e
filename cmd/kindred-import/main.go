// Command kindred-import loads a family tree described in a YAML file into a
// record store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kindredgraph/kindred/internal/config"
	"github.com/kindredgraph/kindred/internal/importer"
	"github.com/kindredgraph/kindred/internal/storage"
	"github.com/kindredgraph/kindred/internal/storage/postgres"
	"github.com/kindredgraph/kindred/internal/storage/sqlite"
)

func main() {
	filePath := flag.String("file", "", "Path to the YAML family tree file (required)")
	dbPath := flag.String("db", "", "SQLite database path (default: <data path>/kindred.db)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Import timeout")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	file, err := importer.ParseFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *filePath, err)
	}

	store, err := openStore(cfg, *dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := importer.Import(ctx, store, file)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	if result.Tree != "" {
		fmt.Printf("Tree:          %s\n", result.Tree)
	}
	fmt.Printf("Persons:       %d\n", result.PersonsCreated)
	fmt.Printf("Relationships: %d\n", result.RelationshipsCreated)
	fmt.Printf("Duration:      %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "Completed with %d errors:\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, dbPath string) (storage.RecordStore, error) {
	if cfg.Storage.StorageEngine == "postgres" {
		return postgres.NewRecordStore(cfg.Storage.PostgresDSN)
	}

	if dbPath == "" {
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, err
		}
		dbPath = cfg.Storage.DataPath + "/kindred.db"
	}
	return sqlite.NewRecordStore(dbPath)
}
