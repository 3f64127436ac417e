package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// listSnapshots lists the snapshot files in a directory, newest first.
func listSnapshots(dir string) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var snapshots []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // skip files we cannot stat
		}

		snapshots = append(snapshots, SnapshotInfo{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})

	return snapshots, nil
}

// ageTier buckets a snapshot age into its retention tier and returns the
// tier index and how many snapshots that tier retains. A negative tier
// means the snapshot is beyond all tiers and always removed.
func ageTier(age time.Duration, policy RetentionPolicy) (int, int) {
	switch {
	case age < 24*time.Hour:
		return 0, policy.Hourly
	case age < 7*24*time.Hour:
		return 1, policy.Daily
	case age < 30*24*time.Hour:
		return 2, policy.Weekly
	case age < 365*24*time.Hour:
		return 3, policy.Monthly
	default:
		return -1, 0
	}
}

// applyRetention removes old snapshots according to the retention policy.
// Within each age tier the newest snapshots are kept.
func applyRetention(dir string, policy RetentionPolicy) error {
	snapshots, err := listSnapshots(dir)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	now := time.Now()
	var kept [4]int
	var toDelete []string

	// snapshots are newest-first, so the first N seen in a tier are the
	// ones retained.
	for _, snap := range snapshots {
		tier, keep := ageTier(now.Sub(snap.Timestamp), policy)
		if tier < 0 {
			toDelete = append(toDelete, snap.Path)
			continue
		}
		if kept[tier]++; kept[tier] > keep {
			toDelete = append(toDelete, snap.Path)
		}
	}

	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete some snapshots: %w", lastErr)
	}

	return nil
}
