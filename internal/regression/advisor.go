// Package regression supplies the auto-regression advisory: given a
// pain-flagged exercise and some user context, suggest a modification. The
// advisory is optional (the engine reaches Complete without it) and is
// always called outside the tick path.
package regression

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coachtaylor/transfit/internal/catalog"
	"github.com/coachtaylor/transfit/internal/models"
)

// PainContext carries what the lifter reported alongside the flag.
type PainContext struct {
	Area     string `json:"area,omitempty"`
	Severity int    `json:"severity,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Advisor suggests a regression for a pain-flagged exercise.
type Advisor interface {
	SuggestRegression(ctx context.Context, exerciseID string, pain PainContext) (models.RegressionSuggestion, error)
}

// HTTPAdvisor calls an external advisory service.
type HTTPAdvisor struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAdvisor creates a client for the advisory service.
func NewHTTPAdvisor(baseURL string) *HTTPAdvisor {
	return &HTTPAdvisor{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type suggestRequest struct {
	ExerciseID string      `json:"exercise_id"`
	Pain       PainContext `json:"pain"`
}

// SuggestRegression POSTs the flagged exercise and pain context to the
// advisory service and returns its suggestion.
func (a *HTTPAdvisor) SuggestRegression(ctx context.Context, exerciseID string, pain PainContext) (models.RegressionSuggestion, error) {
	data, err := json.Marshal(suggestRequest{ExerciseID: exerciseID, Pain: pain})
	if err != nil {
		return models.RegressionSuggestion{}, fmt.Errorf("marshaling suggestion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v1/suggest-regression", bytes.NewReader(data))
	if err != nil {
		return models.RegressionSuggestion{}, fmt.Errorf("building suggestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return models.RegressionSuggestion{}, fmt.Errorf("calling advisory service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.RegressionSuggestion{}, fmt.Errorf("advisory service failed (status %d): %s", resp.StatusCode, body)
	}

	var sug models.RegressionSuggestion
	if err := json.NewDecoder(resp.Body).Decode(&sug); err != nil {
		return models.RegressionSuggestion{}, fmt.Errorf("decoding suggestion: %w", err)
	}
	if sug.ExerciseID == "" {
		sug.ExerciseID = exerciseID
	}
	return sug, nil
}

// CatalogAdvisor is the fallback when no external service is configured:
// it suggests the exercise's first curated regression, or failing that its
// first swap candidate.
type CatalogAdvisor struct {
	catalog *catalog.DB
}

// NewCatalogAdvisor creates a catalog-backed advisor.
func NewCatalogAdvisor(c *catalog.DB) *CatalogAdvisor {
	return &CatalogAdvisor{catalog: c}
}

// SuggestRegression resolves the flagged exercise and picks its first
// curated regression or swap candidate.
func (a *CatalogAdvisor) SuggestRegression(ctx context.Context, exerciseID string, pain PainContext) (models.RegressionSuggestion, error) {
	ex, err := a.catalog.Resolve(ctx, exerciseID)
	if err != nil {
		return models.RegressionSuggestion{}, fmt.Errorf("resolving flagged exercise: %w", err)
	}

	sug := models.RegressionSuggestion{ExerciseID: exerciseID}
	switch {
	case len(ex.Regressions) > 0:
		sug.SuggestedExerciseID = ex.Regressions[0]
		sug.Note = "curated regression for " + ex.Name
	case len(ex.SwapCandidates) > 0:
		sug.SuggestedExerciseID = ex.SwapCandidates[0]
		sug.Note = "no curated regression; nearest swap for " + ex.Name
	default:
		return models.RegressionSuggestion{}, fmt.Errorf("no regression known for %q", exerciseID)
	}
	return sug, nil
}
