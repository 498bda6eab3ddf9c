package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coachtaylor/transfit/internal/models"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestResolveRoundTrip verifies an upserted record resolves with all its
// display and safety fields intact.
func TestResolveRoundTrip(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	in := models.Exercise{
		ID:               "goblet-squat",
		Name:             "Goblet Squat",
		Cues:             []string{"chest up", "knees track over toes"},
		SwapCandidates:   []string{"box-squat", "leg-press"},
		Regressions:      []string{"box-squat"},
		BinderAware:      true,
		HeavyBindingSafe: false,
		PelvicFloorSafe:  true,
	}
	if err := db.Upsert(ctx, in); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := db.Resolve(ctx, "goblet-squat")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Name != "Goblet Squat" {
		t.Errorf("name = %q, want %q", got.Name, "Goblet Squat")
	}
	if len(got.Cues) != 2 || got.Cues[0] != "chest up" {
		t.Errorf("cues = %v", got.Cues)
	}
	if len(got.SwapCandidates) != 2 {
		t.Errorf("swap candidates = %v, want 2 entries", got.SwapCandidates)
	}
	if !got.BinderAware || got.HeavyBindingSafe || !got.PelvicFloorSafe {
		t.Errorf("safety flags = %+v", got)
	}
}

// TestResolveMissing verifies an unknown id returns ErrNotFound, the fatal
// construction error for sessions referencing it.
func TestResolveMissing(t *testing.T) {
	db := openTemp(t)
	_, err := db.Resolve(context.Background(), "no-such-exercise")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestSeedFromFile verifies importing a library export, skipping malformed
// records, and idempotent re-runs.
func TestSeedFromFile(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	library := `[
		{"slug": "squat", "name": "Back Squat", "cues": ["brace"], "swaps": ["goblet-squat"], "binder_aware": false, "heavy_binding_safe": true, "pelvic_floor_safe": true},
		{"slug": "push-up", "name": "Push-Up", "binder_aware": true, "heavy_binding_safe": false, "pelvic_floor_safe": true},
		{"slug": "", "name": "Broken Record"}
	]`
	path := filepath.Join(t.TempDir(), "library.json")
	if err := os.WriteFile(path, []byte(library), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := db.SeedFromFile(ctx, path)
	if err != nil {
		t.Fatalf("SeedFromFile: %v", err)
	}
	if stats.Imported != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 2 imported, 1 skipped", stats)
	}

	// Re-seeding is idempotent.
	if _, err := db.SeedFromFile(ctx, path); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("count after re-seed = %d, want 2", n)
	}

	ex, err := db.Resolve(ctx, "push-up")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !ex.BinderAware || ex.HeavyBindingSafe {
		t.Errorf("push-up flags = %+v", ex)
	}
	if len(ex.Cues) != 0 {
		t.Errorf("cues = %v, want empty", ex.Cues)
	}
}
