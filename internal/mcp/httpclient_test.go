package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coachtaylor/transfit/internal/models"
)

// TestHTTPClientSnapshot verifies a live session snapshot round-trips
// through the REST API.
func TestHTTPClientSnapshot(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/"+id.String() {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.SessionSnapshot{
			SessionID: id,
			Phase:     models.PhaseMain,
			SetNumber: 2,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	snap, err := c.Snapshot(context.Background(), id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.SessionID != id || snap.Phase != models.PhaseMain || snap.SetNumber != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// TestHTTPClientQuerySessions verifies time range parameters are forwarded.
func TestHTTPClientQuerySessions(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/history/sessions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != start.Format(time.RFC3339) {
			t.Errorf("start = %q", got)
		}
		json.NewEncoder(w).Encode([]models.SessionRow{
			{ID: uuid.New(), TotalSets: 9, TotalReps: 72},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	rows, err := c.QuerySessions(context.Background(), start, end, 1)
	if err != nil {
		t.Fatalf("QuerySessions: %v", err)
	}
	if len(rows) != 1 || rows[0].TotalSets != 9 {
		t.Errorf("rows = %+v", rows)
	}
}

// TestHTTPClientErrorStatus verifies non-200 responses surface as errors.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if _, err := c.Snapshot(context.Background(), uuid.New()); err == nil {
		t.Error("expected error from 404 response")
	}
}

// TestHTTPClientResolve verifies catalog lookups, including slug escaping.
func TestHTTPClientResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/exercises/goblet-squat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.Exercise{ID: "goblet-squat", Name: "Goblet Squat"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ex, err := c.Resolve(context.Background(), "goblet-squat")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ex.Name != "Goblet Squat" {
		t.Errorf("name = %q", ex.Name)
	}
}
