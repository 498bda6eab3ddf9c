package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/coachtaylor/transfit/internal/models"
)

// libraryEntry is one record in an exercise-library JSON export. Field
// names follow the library staging format (slug ids, snake_case flags).
type libraryEntry struct {
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Cues             []string `json:"cues"`
	Swaps            []string `json:"swaps"`
	Regressions      []string `json:"regressions"`
	BinderAware      bool     `json:"binder_aware"`
	HeavyBindingSafe bool     `json:"heavy_binding_safe"`
	PelvicFloorSafe  bool     `json:"pelvic_floor_safe"`
}

// SeedStats reports what a seeding run did.
type SeedStats struct {
	Imported int
	Skipped  int
}

// SeedFromFile imports an exercise-library JSON export into the catalog.
// Records without a slug or name are skipped, not fatal; re-running with
// the same file is idempotent.
func (c *DB) SeedFromFile(ctx context.Context, path string) (SeedStats, error) {
	var stats SeedStats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("reading library file: %w", err)
	}

	var entries []libraryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return stats, fmt.Errorf("parsing library file: %w", err)
	}

	for _, e := range entries {
		if e.Slug == "" || e.Name == "" {
			stats.Skipped++
			continue
		}
		ex := models.Exercise{
			ID:               e.Slug,
			Name:             e.Name,
			Cues:             e.Cues,
			SwapCandidates:   e.Swaps,
			Regressions:      e.Regressions,
			BinderAware:      e.BinderAware,
			HeavyBindingSafe: e.HeavyBindingSafe,
			PelvicFloorSafe:  e.PelvicFloorSafe,
		}
		if err := c.Upsert(ctx, ex); err != nil {
			return stats, err
		}
		stats.Imported++
	}
	return stats, nil
}
