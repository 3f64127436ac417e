package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Service takes periodic snapshots of the family database, verifies them,
// and prunes old snapshots per the retention policy.
type Service struct {
	dbPath      string
	snapshotDir string
	interval    time.Duration
	retention   RetentionPolicy
	verify      bool

	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	lastSnapshot time.Time
	nextSnapshot time.Time
}

// NewService creates a snapshot service with the given configuration.
func NewService(cfg Config) (*Service, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.SnapshotDir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 1 * time.Hour
	}

	if cfg.Retention.Hourly == 0 {
		cfg.Retention.Hourly = 24
	}
	if cfg.Retention.Daily == 0 {
		cfg.Retention.Daily = 7
	}
	if cfg.Retention.Weekly == 0 {
		cfg.Retention.Weekly = 4
	}
	if cfg.Retention.Monthly == 0 {
		cfg.Retention.Monthly = 12
	}

	if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &Service{
		dbPath:      cfg.DBPath,
		snapshotDir: cfg.SnapshotDir,
		interval:    cfg.Interval,
		retention:   cfg.Retention,
		verify:      cfg.Verify,
		stopCh:      make(chan struct{}),
	}, nil
}

// Start runs the automated snapshot loop until the context is cancelled or
// Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("snapshot service is already running")
	}
	s.running = true
	s.nextSnapshot = time.Now().Add(s.interval)
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Snapshot service started: interval=%v, dir=%s", s.interval, s.snapshotDir)

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot service stopping (context cancelled)")
			return ctx.Err()

		case <-s.stopCh:
			log.Println("Snapshot service stopping (stop requested)")
			return nil

		case <-ticker.C:
			result, err := s.SnapshotNow(ctx)
			if err != nil {
				log.Printf("Scheduled snapshot failed: %v", err)
			} else {
				log.Printf("Scheduled snapshot completed: path=%s, size=%d bytes, persons=%d, relationships=%d, duration=%v",
					result.Path, result.Size, result.Persons, result.Relationships, result.Duration)
			}

			s.mu.Lock()
			s.nextSnapshot = time.Now().Add(s.interval)
			s.mu.Unlock()
		}
	}
}

// Stop stops the snapshot service gracefully.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("snapshot service is not running")
	}

	close(s.stopCh)
	s.running = false
	return nil
}

// SnapshotNow takes an immediate snapshot: a timestamped copy via VACUUM
// INTO, optional verification, then retention pruning.
func (s *Service) SnapshotNow(ctx context.Context) (*SnapshotResult, error) {
	start := time.Now()

	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}

	// Microseconds in the name keep rapid successive snapshots distinct.
	timestamp := time.Now().Format("20060102-150405.000000")
	path := filepath.Join(s.snapshotDir, fmt.Sprintf("kindred-snapshot-%s.db", timestamp))

	if err := snapshotSQLite(s.dbPath, path); err != nil {
		return &SnapshotResult{
			Path:     path,
			Duration: time.Since(start),
			Error:    err,
		}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return &SnapshotResult{
			Path:     path,
			Duration: time.Since(start),
			Error:    fmt.Errorf("failed to stat snapshot: %w", err),
		}, err
	}

	result := &SnapshotResult{
		Path:     path,
		Duration: time.Since(start),
		Size:     info.Size(),
	}

	if s.verify {
		counts, err := verifySnapshot(path)
		if err != nil {
			result.Error = fmt.Errorf("snapshot verification failed: %w", err)
			return result, result.Error
		}
		result.Verified = true
		result.Persons = counts.persons
		result.Relationships = counts.relationships
	}

	s.mu.Lock()
	s.lastSnapshot = time.Now()
	s.mu.Unlock()

	// Retention failures never fail the snapshot itself.
	if err := applyRetention(s.snapshotDir, s.retention); err != nil {
		log.Printf("Warning: failed to apply retention policy: %v", err)
	}

	return result, nil
}

// ListSnapshots lists all available snapshots, newest first.
func (s *Service) ListSnapshots() ([]SnapshotInfo, error) {
	return listSnapshots(s.snapshotDir)
}

// Restore replaces the database with a snapshot. The service must be
// stopped and the database must not be open elsewhere.
func (s *Service) Restore(ctx context.Context, snapshotPath string) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if running {
		return fmt.Errorf("cannot restore while snapshot service is running")
	}

	if _, err := os.Stat(snapshotPath); err != nil {
		return fmt.Errorf("snapshot not found: %w", err)
	}

	// Keep a pre-restore copy of the current database so a failed restore
	// can be rolled back.
	preRestore := s.dbPath + ".pre-restore"
	if _, err := os.Stat(s.dbPath); err == nil {
		if err := snapshotSQLite(s.dbPath, preRestore); err != nil {
			return fmt.Errorf("failed to create pre-restore copy: %w", err)
		}
		defer func() {
			_ = os.Remove(preRestore)
		}()
	}

	if err := restoreSQLite(snapshotPath, s.dbPath); err != nil {
		if _, statErr := os.Stat(preRestore); statErr == nil {
			if rollbackErr := restoreSQLite(preRestore, s.dbPath); rollbackErr != nil {
				return fmt.Errorf("restore failed and rollback failed: %v (restore error: %w)", rollbackErr, err)
			}
			return fmt.Errorf("restore failed, rolled back to previous state: %w", err)
		}
		return err
	}

	log.Printf("Database restored from snapshot: %s", snapshotPath)
	return nil
}

// HealthCheck returns the current health status of the snapshot service.
func (s *Service) HealthCheck() (*HealthStatus, error) {
	s.mu.Lock()
	last := s.lastSnapshot
	next := s.nextSnapshot
	s.mu.Unlock()

	snapshots, err := s.ListSnapshots()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var diskUsage int64
	for _, snap := range snapshots {
		diskUsage += snap.Size
	}

	status := &HealthStatus{
		LastSnapshot:   last,
		NextSnapshot:   next,
		TotalSnapshots: len(snapshots),
		SnapshotDir:    s.snapshotDir,
		DiskSpaceUsed:  diskUsage,
		Status:         "healthy",
	}

	switch {
	case last.IsZero():
		status.Message = "No snapshots yet"
	case time.Since(last) > s.interval*2:
		status.Status = "warning"
		status.Message = fmt.Sprintf("Snapshot overdue by %v", time.Since(last)-s.interval)
	default:
		status.Message = fmt.Sprintf("Last snapshot: %v ago", time.Since(last).Round(time.Minute))
	}

	return status, nil
}
