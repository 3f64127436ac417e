package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"
)

// recordCounts holds the row counts read during snapshot verification.
type recordCounts struct {
	persons       int
	relationships int
}

// snapshotSQLite creates a consistent point-in-time copy of a SQLite
// database using VACUUM INTO, which is safe under WAL mode.
func snapshotSQLite(sourcePath, destPath string) error {
	sourceDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", sourcePath))
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = sourceDB.Close() }()

	if err := sourceDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping source database: %w", err)
	}

	if _, err := sourceDB.Exec(fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}

	return nil
}

// verifySnapshot runs SQLite's integrity_check on a snapshot and confirms
// the family record tables survived by counting their rows.
func verifySnapshot(path string) (*recordCounts, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return nil, fmt.Errorf("failed to run integrity check: %w", err)
	}
	if result != "ok" {
		return nil, fmt.Errorf("integrity check failed: %s", result)
	}

	counts := &recordCounts{}
	if err := db.QueryRow("SELECT COUNT(*) FROM persons").Scan(&counts.persons); err != nil {
		return nil, fmt.Errorf("persons table missing from snapshot: %w", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM relationships").Scan(&counts.relationships); err != nil {
		return nil, fmt.Errorf("relationships table missing from snapshot: %w", err)
	}

	return counts, nil
}

// restoreSQLite replaces the target database file with a verified snapshot.
// The target database must not be in use.
func restoreSQLite(snapshotPath, targetPath string) error {
	if _, err := verifySnapshot(snapshotPath); err != nil {
		return fmt.Errorf("snapshot verification failed: %w", err)
	}

	src, err := os.Open(snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("failed to create target file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy snapshot: %w", err)
	}

	if err := dst.Sync(); err != nil {
		return fmt.Errorf("failed to sync target file: %w", err)
	}

	if _, err := verifySnapshot(targetPath); err != nil {
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	return nil
}
