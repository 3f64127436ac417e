package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kindredgraph/kindred/internal/storage/sqlite"
	"github.com/kindredgraph/kindred/pkg/types"
)

// newTestDB writes a small family database to disk and returns its path.
func newTestDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "kindred.db")
	store, err := sqlite.NewRecordStore(dbPath)
	if err != nil {
		t.Fatalf("NewRecordStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, p := range []*types.Person{
		{ID: "per:a", FirstName: "Anna", LastName: "Byrne", IsLiving: true},
		{ID: "per:b", FirstName: "Brian", LastName: "Byrne", IsLiving: true},
	} {
		if err := store.StorePerson(ctx, p); err != nil {
			t.Fatalf("StorePerson: %v", err)
		}
	}
	err = store.CreateRelationship(ctx, &types.Relationship{
		PersonID:        "per:a",
		RelatedPersonID: "per:b",
		Type:            types.RelationSpouse,
	})
	if err != nil {
		t.Fatalf("CreateRelationship: %v", err)
	}
	return dbPath
}

func newTestService(t *testing.T, dbPath string) *Service {
	t.Helper()
	svc, err := NewService(Config{
		DBPath:      dbPath,
		SnapshotDir: filepath.Join(t.TempDir(), "snapshots"),
		Verify:      true,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSnapshotNow(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	result, err := svc.SnapshotNow(context.Background())
	if err != nil {
		t.Fatalf("SnapshotNow: %v", err)
	}

	if !result.Verified {
		t.Error("snapshot should be verified")
	}
	if result.Persons != 2 {
		t.Errorf("Persons = %d, want 2", result.Persons)
	}
	if result.Relationships != 2 {
		t.Errorf("Relationships = %d, want 2 (one fact, two directional rows)", result.Relationships)
	}
	if result.Size == 0 {
		t.Error("snapshot size should be non-zero")
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}
}

func TestSnapshotNow_MissingDatabase(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "absent.db"))

	if _, err := svc.SnapshotNow(context.Background()); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestListSnapshots(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	if _, err := svc.SnapshotNow(ctx); err != nil {
		t.Fatalf("SnapshotNow: %v", err)
	}
	if _, err := svc.SnapshotNow(ctx); err != nil {
		t.Fatalf("SnapshotNow: %v", err)
	}

	snapshots, err := svc.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}
	if snapshots[0].Timestamp.Before(snapshots[1].Timestamp) {
		t.Error("snapshots should be sorted newest first")
	}
}

func TestRestore(t *testing.T) {
	dbPath := newTestDB(t)
	svc := newTestService(t, dbPath)
	ctx := context.Background()

	result, err := svc.SnapshotNow(ctx)
	if err != nil {
		t.Fatalf("SnapshotNow: %v", err)
	}

	// Mutate the live database, then restore the snapshot.
	store, err := sqlite.NewRecordStore(dbPath)
	if err != nil {
		t.Fatalf("NewRecordStore: %v", err)
	}
	if err := store.DeletePerson(ctx, "per:a"); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}
	store.Close()

	if err := svc.Restore(ctx, result.Path); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	store, err = sqlite.NewRecordStore(dbPath)
	if err != nil {
		t.Fatalf("NewRecordStore after restore: %v", err)
	}
	defer store.Close()

	persons, err := store.ListAllPersons(ctx)
	if err != nil {
		t.Fatalf("ListAllPersons: %v", err)
	}
	if len(persons) != 2 {
		t.Errorf("got %d persons after restore, want 2", len(persons))
	}
}

func TestRestore_UnknownSnapshot(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	err := svc.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	if err == nil {
		t.Fatal("expected error for unknown snapshot")
	}
}

func TestHealthCheck(t *testing.T) {
	svc := newTestService(t, newTestDB(t))
	ctx := context.Background()

	health, err := svc.HealthCheck()
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
	if health.TotalSnapshots != 0 {
		t.Errorf("TotalSnapshots = %d, want 0", health.TotalSnapshots)
	}

	if _, err := svc.SnapshotNow(ctx); err != nil {
		t.Fatalf("SnapshotNow: %v", err)
	}

	health, err = svc.HealthCheck()
	if err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if health.TotalSnapshots != 1 {
		t.Errorf("TotalSnapshots = %d, want 1", health.TotalSnapshots)
	}
	if health.DiskSpaceUsed == 0 {
		t.Error("DiskSpaceUsed should be non-zero after a snapshot")
	}
	if health.LastSnapshot.IsZero() {
		t.Error("LastSnapshot should be set")
	}
}

func TestApplyRetention_RemovesExpired(t *testing.T) {
	dir := t.TempDir()

	// Two fresh snapshots plus one aged beyond every tier.
	fresh1 := filepath.Join(dir, "kindred-snapshot-new1.db")
	fresh2 := filepath.Join(dir, "kindred-snapshot-new2.db")
	ancient := filepath.Join(dir, "kindred-snapshot-old.db")
	for _, path := range []string{fresh1, fresh2, ancient} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	old := time.Now().Add(-2 * 365 * 24 * time.Hour)
	if err := os.Chtimes(ancient, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	policy := RetentionPolicy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}
	if err := applyRetention(dir, policy); err != nil {
		t.Fatalf("applyRetention: %v", err)
	}

	if _, err := os.Stat(ancient); !os.IsNotExist(err) {
		t.Error("snapshot older than a year should be removed")
	}
	for _, path := range []string{fresh1, fresh2} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("fresh snapshot should be kept: %v", err)
		}
	}
}

func TestApplyRetention_TierLimit(t *testing.T) {
	dir := t.TempDir()

	// Three snapshots within the hourly tier, policy keeps two.
	now := time.Now()
	for i, name := range []string{"a.db", "b.db", "c.db"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		ts := now.Add(-time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	policy := RetentionPolicy{Hourly: 2, Daily: 7, Weekly: 4, Monthly: 12}
	if err := applyRetention(dir, policy); err != nil {
		t.Fatalf("applyRetention: %v", err)
	}

	snapshots, err := listSnapshots(dir)
	if err != nil {
		t.Fatalf("listSnapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots after retention, want 2", len(snapshots))
	}
	// The oldest of the three (c.db) is the one pruned.
	for _, snap := range snapshots {
		if filepath.Base(snap.Path) == "c.db" {
			t.Error("oldest snapshot should have been pruned")
		}
	}
}

func TestServiceStartStop(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	if err := svc.Stop(); err == nil {
		t.Error("second Stop should report the service is not running")
	}
}
