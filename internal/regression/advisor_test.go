package regression

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/coachtaylor/transfit/internal/catalog"
	"github.com/coachtaylor/transfit/internal/models"
)

// TestHTTPAdvisorSuggestion verifies the request/response round trip with
// the advisory service.
func TestHTTPAdvisorSuggestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/suggest-regression" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req suggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.ExerciseID != "squat" || req.Pain.Area != "knee" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(models.RegressionSuggestion{
			SuggestedExerciseID: "box-squat",
			Note:                "limit depth",
		})
	}))
	defer srv.Close()

	a := NewHTTPAdvisor(srv.URL)
	sug, err := a.SuggestRegression(context.Background(), "squat", PainContext{Area: "knee", Severity: 4})
	if err != nil {
		t.Fatalf("SuggestRegression: %v", err)
	}
	if sug.SuggestedExerciseID != "box-squat" {
		t.Errorf("suggestion = %q, want box-squat", sug.SuggestedExerciseID)
	}
	if sug.ExerciseID != "squat" {
		t.Errorf("exercise id backfilled to %q, want squat", sug.ExerciseID)
	}
}

// TestHTTPAdvisorServerError verifies a non-200 is reported, not masked.
func TestHTTPAdvisorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewHTTPAdvisor(srv.URL)
	if _, err := a.SuggestRegression(context.Background(), "squat", PainContext{}); err == nil {
		t.Error("expected error from 503 response")
	}
}

// TestCatalogAdvisorFallback verifies the catalog-backed advisor prefers a
// curated regression over a swap candidate.
func TestCatalogAdvisorFallback(t *testing.T) {
	db, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := db.Upsert(ctx, models.Exercise{
		ID: "squat", Name: "Back Squat",
		Regressions:    []string{"box-squat"},
		SwapCandidates: []string{"leg-press"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := db.Upsert(ctx, models.Exercise{
		ID: "push-up", Name: "Push-Up",
		SwapCandidates: []string{"incline-push-up"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	a := NewCatalogAdvisor(db)

	sug, err := a.SuggestRegression(ctx, "squat", PainContext{})
	if err != nil {
		t.Fatalf("SuggestRegression: %v", err)
	}
	if sug.SuggestedExerciseID != "box-squat" {
		t.Errorf("suggestion = %q, want curated regression box-squat", sug.SuggestedExerciseID)
	}

	sug, err = a.SuggestRegression(ctx, "push-up", PainContext{})
	if err != nil {
		t.Fatalf("SuggestRegression: %v", err)
	}
	if sug.SuggestedExerciseID != "incline-push-up" {
		t.Errorf("suggestion = %q, want swap fallback incline-push-up", sug.SuggestedExerciseID)
	}

	if _, err := a.SuggestRegression(ctx, "no-such", PainContext{}); err == nil {
		t.Error("expected error for unknown exercise")
	}
}
