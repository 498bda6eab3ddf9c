package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coachtaylor/transfit/internal/models"
)

// RecordSession persists one completed session: the summary row plus a
// batch of its ledger entries, in a single transaction. Called once per
// session reaching Complete; a failure is reported to the caller, who
// keeps the in-memory summary available for retry. ON CONFLICT DO NOTHING
// makes retries idempotent.
func (db *DB) RecordSession(ctx context.Context, summary *models.SessionSummary) error {
	row := summaryToRow(summary)
	sets := summaryToSetRows(summary)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning session tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, started_at, completed_at,
		 total_seconds, total_sets, total_reps, average_rpe)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO NOTHING`,
		row.ID, row.UserID, row.StartedAt, row.CompletedAt,
		row.TotalSeconds, row.TotalSets, row.TotalReps, row.AverageRPE)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	if err := insertSessionSets(ctx, tx, sets); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session tx: %w", err)
	}
	return nil
}

// insertSessionSets batch-inserts ledger entries with a multi-VALUES
// statement.
func insertSessionSets(ctx context.Context, tx pgx.Tx, rows []models.SessionSetRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO session_sets (session_id, user_id, exercise_id, swapped_to,
		set_number, reps, weight, rpe, completed_at, skipped, pain_flagged) VALUES `
	args := make([]any, 0, len(rows)*11)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 11
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11,
		))
		args = append(args, r.SessionID, r.UserID, r.ExerciseID, r.SwappedTo,
			r.SetNumber, r.Reps, r.Weight, r.RPE, r.CompletedAt, r.Skipped, r.PainFlagged)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting session sets: %w", err)
	}
	return nil
}

// QuerySessions retrieves session summaries in a date range, newest first.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, started_at, completed_at,
		 total_seconds, total_sets, total_reps, average_rpe
		 FROM sessions
		 WHERE started_at >= $1 AND started_at < $2 AND user_id = $3
		 ORDER BY started_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		var r models.SessionRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.StartedAt, &r.CompletedAt,
			&r.TotalSeconds, &r.TotalSets, &r.TotalReps, &r.AverageRPE); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetSessionSets retrieves one session's ledger entries in append order.
func (db *DB) GetSessionSets(ctx context.Context, sessionID uuid.UUID, userID int) ([]models.SessionSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, user_id, exercise_id, swapped_to,
		 set_number, reps, weight, rpe, completed_at, skipped, pain_flagged
		 FROM session_sets
		 WHERE session_id = $1 AND user_id = $2
		 ORDER BY completed_at ASC, set_number ASC`,
		sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSetRow
	for rows.Next() {
		var r models.SessionSetRow
		if err := rows.Scan(&r.SessionID, &r.UserID, &r.ExerciseID, &r.SwappedTo,
			&r.SetNumber, &r.Reps, &r.Weight, &r.RPE, &r.CompletedAt, &r.Skipped, &r.PainFlagged); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func summaryToRow(s *models.SessionSummary) models.SessionRow {
	return models.SessionRow{
		ID:           s.SessionID,
		UserID:       s.UserID,
		StartedAt:    s.StartedAt,
		CompletedAt:  s.CompletedAt,
		TotalSeconds: s.TotalSeconds,
		TotalSets:    s.Totals.TotalSets,
		TotalReps:    s.Totals.TotalReps,
		AverageRPE:   s.Totals.AverageRPE,
	}
}

func summaryToSetRows(s *models.SessionSummary) []models.SessionSetRow {
	var rows []models.SessionSetRow
	for _, ex := range s.Exercises {
		for _, set := range ex.CompletedSets {
			rows = append(rows, models.SessionSetRow{
				SessionID:   s.SessionID,
				UserID:      s.UserID,
				ExerciseID:  set.ExerciseID,
				SwappedTo:   ex.SwappedTo,
				SetNumber:   set.SetNumber,
				Reps:        set.Reps,
				Weight:      set.Weight,
				RPE:         set.RPE,
				CompletedAt: set.CompletedAt,
				Skipped:     set.Skipped,
				PainFlagged: ex.PainFlagged,
			})
		}
	}
	return rows
}
