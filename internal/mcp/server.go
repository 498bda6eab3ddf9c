// Package mcp exposes live and historical workout data to MCP clients.
// Tools are read-only: commands reach the engine over the REST API, never
// through here. The server runs over stdio next to the lifter's agent and
// reads everything through the REST API (over Tailscale in production).
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/coachtaylor/transfit/internal/models"
)

// LiveSource reads snapshots of in-flight sessions.
type LiveSource interface {
	Snapshot(ctx context.Context, id uuid.UUID) (models.SessionSnapshot, error)
	Snapshots(ctx context.Context) ([]models.SessionSnapshot, error)
}

// HistorySource reads persisted sessions.
type HistorySource interface {
	QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.SessionRow, error)
	GetSessionSets(ctx context.Context, sessionID uuid.UUID, userID int) ([]models.SessionSetRow, error)
}

// ExerciseSource reads the exercise catalog.
type ExerciseSource interface {
	Resolve(ctx context.Context, exerciseID string) (models.Exercise, error)
}

// New creates an MCP server with all tools and resources registered.
func New(live LiveSource, history HistorySource, exercises ExerciseSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Transfit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Transfit workout execution server. Inspect live guided sessions, completed session history, and the exercise catalog. All tools are read-only."),
	)

	h := &handlers{live: live, history: history, exercises: exercises, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetLiveSession, Handler: h.getLiveSession},
		server.ServerTool{Tool: toolListLiveSessions, Handler: h.listLiveSessions},
		server.ServerTool{Tool: toolGetSessionHistory, Handler: h.getSessionHistory},
		server.ServerTool{Tool: toolGetSessionSets, Handler: h.getSessionSets},
		server.ServerTool{Tool: toolGetExercise, Handler: h.getExercise},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActiveSessions, Handler: h.activeSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	live      LiveSource
	history   HistorySource
	exercises ExerciseSource
	log       *slog.Logger
}

// --- Resource definitions ---

var resActiveSessions = mcp.NewResource(
	"transfit://active_sessions",
	"Active Sessions",
	mcp.WithResourceDescription("Snapshots of every workout session currently in flight: phase, elapsed time, current set, rest state, and ledger totals"),
	mcp.WithMIMEType("application/json"),
)
