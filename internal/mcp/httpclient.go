package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coachtaylor/transfit/internal/models"
)

// HTTPClient implements the MCP data sources by calling the Transfit REST
// API. Used for remote MCP mode where the binary runs locally (stdio) but
// sessions live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient satisfies every source interface.
var (
	_ LiveSource     = (*HTTPClient)(nil)
	_ HistorySource  = (*HTTPClient)(nil)
	_ ExerciseSource = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

// Snapshot fetches one live session snapshot.
func (c *HTTPClient) Snapshot(ctx context.Context, id uuid.UUID) (models.SessionSnapshot, error) {
	body, err := c.get(ctx, "/api/v1/sessions/"+id.String(), nil)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	var snap models.SessionSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("httpclient: decode snapshot: %w", err)
	}
	return snap, nil
}

// Snapshots fetches every live session snapshot.
func (c *HTTPClient) Snapshots(ctx context.Context) ([]models.SessionSnapshot, error) {
	body, err := c.get(ctx, "/api/v1/sessions", nil)
	if err != nil {
		return nil, err
	}

	var snaps []models.SessionSnapshot
	if err := json.Unmarshal(body, &snaps); err != nil {
		return nil, fmt.Errorf("httpclient: decode snapshots: %w", err)
	}
	return snaps, nil
}

// QuerySessions fetches completed sessions in a time range. The REST API
// scopes data to the lifter, so userID is unused here.
func (c *HTTPClient) QuerySessions(ctx context.Context, start, end time.Time, _ int) ([]models.SessionRow, error) {
	body, err := c.get(ctx, "/api/v1/history/sessions", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var rows []models.SessionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return rows, nil
}

// GetSessionSets fetches the per-set detail of a completed session.
func (c *HTTPClient) GetSessionSets(ctx context.Context, sessionID uuid.UUID, _ int) ([]models.SessionSetRow, error) {
	body, err := c.get(ctx, "/api/v1/history/sessions/"+sessionID.String(), nil)
	if err != nil {
		return nil, err
	}

	var rows []models.SessionSetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode session sets: %w", err)
	}
	return rows, nil
}

// Resolve fetches one exercise from the catalog.
func (c *HTTPClient) Resolve(ctx context.Context, exerciseID string) (models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+url.PathEscape(exerciseID), nil)
	if err != nil {
		return models.Exercise{}, err
	}

	var ex models.Exercise
	if err := json.Unmarshal(body, &ex); err != nil {
		return models.Exercise{}, fmt.Errorf("httpclient: decode exercise: %w", err)
	}
	return ex, nil
}
