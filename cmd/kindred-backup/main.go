// Command kindred-backup runs the automated database snapshot service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kindredgraph/kindred/internal/backup"
	"github.com/kindredgraph/kindred/internal/config"
)

var (
	dbPath      = flag.String("db", "", "Path to database file (overrides config)")
	snapshotDir = flag.String("snapshot-dir", "", "Snapshot directory path (overrides config)")
	interval    = flag.Duration("interval", 0, "Snapshot interval (overrides config)")
	verify      = flag.Bool("verify", true, "Verify snapshots after creation")
	oneshot     = flag.Bool("oneshot", false, "Take a single snapshot and exit")
	restore     = flag.String("restore", "", "Restore database from snapshot file and exit")
	healthCmd   = flag.Bool("health", false, "Check snapshot service health and exit")
	listCmd     = flag.Bool("list", false, "List all available snapshots and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbPathFinal := cfg.Storage.DataPath + "/kindred.db"
	if *dbPath != "" {
		dbPathFinal = *dbPath
	}

	snapshotDirFinal := cfg.Backup.SnapshotPath
	if *snapshotDir != "" {
		snapshotDirFinal = *snapshotDir
	}

	intervalFinal := 1 * time.Hour
	if cfg.Backup.SnapshotInterval != "" {
		if d, err := time.ParseDuration(cfg.Backup.SnapshotInterval); err == nil {
			intervalFinal = d
		}
	}
	if *interval > 0 {
		intervalFinal = *interval
	}

	service, err := backup.NewService(backup.Config{
		DBPath:      dbPathFinal,
		SnapshotDir: snapshotDirFinal,
		Interval:    intervalFinal,
		Verify:      *verify,
	})
	if err != nil {
		log.Fatalf("Failed to create snapshot service: %v", err)
	}

	ctx := context.Background()

	if *restore != "" {
		handleRestore(ctx, service, *restore)
		return
	}
	if *healthCmd {
		handleHealth(service)
		return
	}
	if *listCmd {
		handleList(service)
		return
	}
	if *oneshot {
		handleOneshot(ctx, service)
		return
	}

	runService(ctx, service)
}

func handleRestore(ctx context.Context, service *backup.Service, snapshotPath string) {
	log.Printf("Restoring database from snapshot: %s", snapshotPath)

	if err := service.Restore(ctx, snapshotPath); err != nil {
		log.Fatalf("Restore failed: %v", err)
	}

	log.Println("Database restored successfully")
}

func handleHealth(service *backup.Service) {
	health, err := service.HealthCheck()
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	fmt.Printf("Status: %s\n", health.Status)
	if health.Message != "" {
		fmt.Printf("Message: %s\n", health.Message)
	}
	fmt.Printf("Total Snapshots: %d\n", health.TotalSnapshots)
	fmt.Printf("Disk Space Used: %.2f MB\n", float64(health.DiskSpaceUsed)/(1024*1024))
	fmt.Printf("Snapshot Directory: %s\n", health.SnapshotDir)

	if !health.LastSnapshot.IsZero() {
		fmt.Printf("Last Snapshot: %s (%s ago)\n",
			health.LastSnapshot.Format(time.RFC3339),
			time.Since(health.LastSnapshot).Round(time.Minute))
	} else {
		fmt.Println("Last Snapshot: Never")
	}

	if health.Status != "healthy" {
		os.Exit(1)
	}
}

func handleList(service *backup.Service) {
	snapshots, err := service.ListSnapshots()
	if err != nil {
		log.Fatalf("Failed to list snapshots: %v", err)
	}

	if len(snapshots) == 0 {
		fmt.Println("No snapshots found")
		return
	}

	fmt.Printf("Found %d snapshot(s):\n\n", len(snapshots))
	for i, snap := range snapshots {
		fmt.Printf("%d. %s\n", i+1, snap.Path)
		fmt.Printf("   Size: %.2f MB\n", float64(snap.Size)/(1024*1024))
		fmt.Printf("   Created: %s (%s ago)\n",
			snap.Timestamp.Format(time.RFC3339),
			time.Since(snap.Timestamp).Round(time.Minute))
		fmt.Println()
	}
}

func handleOneshot(ctx context.Context, service *backup.Service) {
	log.Println("Taking one-time snapshot...")

	result, err := service.SnapshotNow(ctx)
	if err != nil {
		log.Fatalf("Snapshot failed: %v", err)
	}

	log.Printf("Snapshot completed successfully:")
	log.Printf("  Path: %s", result.Path)
	log.Printf("  Size: %.2f MB", float64(result.Size)/(1024*1024))
	log.Printf("  Duration: %v", result.Duration)
	if result.Verified {
		log.Printf("  Verified: %d persons, %d relationship rows", result.Persons, result.Relationships)
	}
}

func runService(ctx context.Context, service *backup.Service) {
	go func() {
		if err := service.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Snapshot service error: %v", err)
		}
	}()

	log.Println("Kindred snapshot service started")
	log.Println("Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down snapshot service...")
	if err := service.Stop(); err != nil {
		log.Printf("Warning: %v", err)
	}

	log.Println("Snapshot service stopped")
}
