package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coachtaylor/transfit/internal/models"
)

// TestSummaryToSetRows verifies the summary→row flattening: one row per
// ledger entry, carrying the exercise-level swap and pain annotations.
func TestSummaryToSetRows(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	weight := 60.0
	rpe := 8

	summary := &models.SessionSummary{
		SessionID: id,
		UserID:    1,
		Exercises: []models.ExerciseResult{
			{
				ExerciseID:  "squat",
				SwappedTo:   "goblet-squat",
				PainFlagged: true,
				CompletedSets: []models.CompletedSet{
					{ExerciseID: "goblet-squat", SetNumber: 1, Reps: 10, Weight: &weight, RPE: &rpe, CompletedAt: now},
					{ExerciseID: "goblet-squat", SetNumber: 2, Skipped: true, CompletedAt: now},
				},
			},
			{ExerciseID: "bench", Skipped: true},
		},
	}

	rows := summaryToSetRows(summary)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (skipped exercise has no reached sets)", len(rows))
	}
	first := rows[0]
	if first.SessionID != id || first.ExerciseID != "goblet-squat" || first.SwappedTo != "goblet-squat" {
		t.Errorf("first row = %+v", first)
	}
	if first.Weight == nil || *first.Weight != 60.0 || first.RPE == nil || *first.RPE != 8 {
		t.Errorf("first row weight/rpe = %v/%v, want 60/8", first.Weight, first.RPE)
	}
	if !first.PainFlagged {
		t.Error("pain flag not carried onto set rows")
	}
	if !rows[1].Skipped || rows[1].Weight != nil {
		t.Errorf("second row = %+v, want skipped with null weight", rows[1])
	}
}

// TestSummaryToRow verifies the summary row mapping.
func TestSummaryToRow(t *testing.T) {
	started := time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC)
	summary := &models.SessionSummary{
		SessionID:    uuid.New(),
		UserID:       2,
		StartedAt:    started,
		CompletedAt:  started.Add(42 * time.Minute),
		TotalSeconds: 2520,
		Totals:       models.LedgerTotals{TotalSets: 12, TotalReps: 96, AverageRPE: 7.5},
	}

	row := summaryToRow(summary)
	if row.UserID != 2 || row.TotalSeconds != 2520 {
		t.Errorf("row = %+v", row)
	}
	if row.TotalSets != 12 || row.TotalReps != 96 || row.AverageRPE != 7.5 {
		t.Errorf("totals = %d/%d/%v, want 12/96/7.5", row.TotalSets, row.TotalReps, row.AverageRPE)
	}
}
