// Package catalog resolves exercise ids to their display and safety data.
// The catalog is a local SQLite database seeded from an exercise-library
// export; the engine treats an unresolvable id as fatal at session
// construction.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/coachtaylor/transfit/internal/models"
)

// ErrNotFound is returned when an exercise id is not in the catalog.
var ErrNotFound = errors.New("exercise not found")

// DB wraps the SQLite exercise catalog.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at the given path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exercises (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		cues               TEXT NOT NULL DEFAULT '[]',
		swap_candidates    TEXT NOT NULL DEFAULT '[]',
		regressions        TEXT NOT NULL DEFAULT '[]',
		binder_aware       INTEGER NOT NULL DEFAULT 0,
		heavy_binding_safe INTEGER NOT NULL DEFAULT 1,
		pelvic_floor_safe  INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exercises table: %w", err)
	}

	return &DB{db: db}, nil
}

// Resolve looks up an exercise by id.
func (c *DB) Resolve(ctx context.Context, id string) (models.Exercise, error) {
	var (
		ex                      models.Exercise
		cues, swaps, regs       string
		binder, heavy, pelvic   int
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, cues, swap_candidates, regressions,
		 binder_aware, heavy_binding_safe, pelvic_floor_safe
		 FROM exercises WHERE id = ?`, id,
	).Scan(&ex.ID, &ex.Name, &cues, &swaps, &regs, &binder, &heavy, &pelvic)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Exercise{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("resolving exercise %q: %w", id, err)
	}

	if err := json.Unmarshal([]byte(cues), &ex.Cues); err != nil {
		return models.Exercise{}, fmt.Errorf("decoding cues for %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(swaps), &ex.SwapCandidates); err != nil {
		return models.Exercise{}, fmt.Errorf("decoding swap candidates for %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(regs), &ex.Regressions); err != nil {
		return models.Exercise{}, fmt.Errorf("decoding regressions for %q: %w", id, err)
	}
	ex.BinderAware = binder != 0
	ex.HeavyBindingSafe = heavy != 0
	ex.PelvicFloorSafe = pelvic != 0
	return ex, nil
}

// Upsert inserts or replaces one exercise record. Seeding is idempotent.
func (c *DB) Upsert(ctx context.Context, ex models.Exercise) error {
	cues, err := json.Marshal(emptyIfNil(ex.Cues))
	if err != nil {
		return fmt.Errorf("encoding cues: %w", err)
	}
	swaps, err := json.Marshal(emptyIfNil(ex.SwapCandidates))
	if err != nil {
		return fmt.Errorf("encoding swap candidates: %w", err)
	}
	regs, err := json.Marshal(emptyIfNil(ex.Regressions))
	if err != nil {
		return fmt.Errorf("encoding regressions: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO exercises
		 (id, name, cues, swap_candidates, regressions,
		  binder_aware, heavy_binding_safe, pelvic_floor_safe)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Name, string(cues), string(swaps), string(regs),
		boolInt(ex.BinderAware), boolInt(ex.HeavyBindingSafe), boolInt(ex.PelvicFloorSafe))
	if err != nil {
		return fmt.Errorf("upserting exercise %q: %w", ex.ID, err)
	}
	return nil
}

// List returns every exercise id and name, ordered by id.
func (c *DB) List(ctx context.Context) ([]models.Exercise, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name FROM exercises ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Count returns the number of catalog records.
func (c *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting exercises: %w", err)
	}
	return n, nil
}

// Close closes the catalog database.
func (c *DB) Close() error { return c.db.Close() }

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
