// Package backup provides automated snapshots of the family database with
// tiered retention and integrity verification.
package backup

import (
	"time"
)

// Config holds snapshot service configuration.
type Config struct {
	// DBPath is the path to the SQLite database file to snapshot
	DBPath string

	// SnapshotDir is the directory where snapshots are stored
	SnapshotDir string

	// Interval is the duration between automated snapshots (default: 1 hour)
	Interval time.Duration

	// Retention defines how long to keep snapshots at different intervals
	Retention RetentionPolicy

	// Verify enables integrity checking after each snapshot (default: true)
	Verify bool
}

// RetentionPolicy defines how many snapshots to keep at each tier.
// Snapshots are categorized by age:
// - Hourly: snapshots less than 24 hours old
// - Daily: snapshots between 1-7 days old
// - Weekly: snapshots between 7-30 days old
// - Monthly: snapshots between 30-365 days old
// Snapshots older than a year are always removed.
type RetentionPolicy struct {
	Hourly  int // default: 24
	Daily   int // default: 7
	Weekly  int // default: 4
	Monthly int // default: 12
}

// SnapshotInfo contains metadata about a snapshot file.
type SnapshotInfo struct {
	// Path is the full path to the snapshot file
	Path string

	// Timestamp is when the snapshot was created
	Timestamp time.Time

	// Size is the snapshot file size in bytes
	Size int64
}

// SnapshotResult contains the result of a snapshot operation.
type SnapshotResult struct {
	// Path is the path to the created snapshot file
	Path string

	// Duration is how long the snapshot took
	Duration time.Duration

	// Size is the snapshot file size in bytes
	Size int64

	// Verified indicates if the snapshot passed the integrity check
	Verified bool

	// Persons and Relationships are the row counts found during
	// verification; zero when verification is disabled.
	Persons       int
	Relationships int

	// Error is any error that occurred during the snapshot
	Error error
}

// HealthStatus represents the health of the snapshot service.
type HealthStatus struct {
	// Status is the overall health status: "healthy", "warning", or "error"
	Status string

	// Message provides additional context about the status
	Message string

	// LastSnapshot is when the last successful snapshot completed
	LastSnapshot time.Time

	// NextSnapshot is when the next snapshot is scheduled
	NextSnapshot time.Time

	// TotalSnapshots is the number of snapshots currently stored
	TotalSnapshots int

	// SnapshotDir is the snapshot storage directory
	SnapshotDir string

	// DiskSpaceUsed is total bytes used by all snapshots
	DiskSpaceUsed int64
}
