package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coachtaylor/transfit/internal/catalog"
	"github.com/coachtaylor/transfit/internal/engine"
	"github.com/coachtaylor/transfit/internal/models"
	"github.com/coachtaylor/transfit/internal/regression"
)

type createSessionRequest struct {
	UserID       int                        `json:"user_id"`
	BinderWorn   bool                       `json:"binder_worn"`
	Prescription models.WorkoutPrescription `json:"prescription"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	prescription := req.Prescription
	if len(prescription.SafetyCheckpoints) == 0 && s.safety.BinderCheckSeconds > 0 {
		msg := s.safety.BinderCheckMessage
		if msg == "" {
			msg = "Binder check: pause and assess breathing and comfort."
		}
		prescription.SafetyCheckpoints = []models.SafetyCheckpoint{
			{TriggerElapsedSeconds: s.safety.BinderCheckSeconds, Message: msg},
		}
	}

	binderWorn := req.BinderWorn
	sess, err := engine.New(r.Context(), prescription, engine.ResolverFunc(func(ctx context.Context, exerciseID string) error {
		_, err := s.catalog.Resolve(ctx, exerciseID)
		return err
	}), engine.Options{
		UserID:       req.UserID,
		Precondition: func() bool { return binderWorn },
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, engine.ErrUnknownExercise) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	// The runner outlives the request; it is cancelled via the registry.
	s.registry.Start(context.WithoutCancel(r.Context()), sess)
	s.log.Info("session started", "session_id", sess.ID(), "user_id", req.UserID, "exercises", len(prescription.Exercises))

	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

type commandRequest struct {
	Reps          *int     `json:"reps,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	RPE           *int     `json:"rpe,omitempty"`
	Index         int      `json:"index"`
	Seconds       int      `json:"seconds"`
	NewExerciseID string   `json:"new_exercise_id"`
	ExerciseID    string   `json:"exercise_id"`
	Area          string   `json:"area"`
	Severity      int      `json:"severity"`
	Note          string   `json:"note"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	command := chi.URLParam(r, "command")
	var err error
	switch command {
	case "pause":
		err = sess.Pause()
	case "resume":
		err = sess.Resume()
	case "completeWarmUpItem":
		err = sess.CompleteWarmUpItem(req.Index)
	case "finishWarmUp":
		err = sess.FinishWarmUp()
	case "startSet":
		err = sess.StartSet()
	case "restartSet":
		err = sess.RestartSet()
	case "continueSet":
		err = sess.ContinueSet()
	case "completeSet":
		if req.Reps == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "completeSet requires reps"})
			return
		}
		err = sess.CompleteSet(*req.Reps, req.Weight, req.RPE)
	case "skipSet":
		err = sess.SkipSet()
	case "skipExercise":
		err = sess.SkipExercise()
	case "swapExercise":
		if req.NewExerciseID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "swapExercise requires new_exercise_id"})
			return
		}
		if _, err := s.catalog.Resolve(r.Context(), req.NewExerciseID); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown swap target: " + err.Error()})
			return
		}
		err = sess.SwapExercise(req.NewExerciseID)
	case "flagPain":
		if req.ExerciseID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "flagPain requires exercise_id"})
			return
		}
		err = sess.FlagPain(req.ExerciseID)
		if err == nil {
			s.adviseRegression(r.Context(), sess, req)
		}
	case "skipRest":
		err = sess.SkipRest()
	case "extendRest":
		err = sess.ExtendRest(req.Seconds)
	case "dismissSafetyCheckpoint":
		err = sess.DismissSafetyCheckpoint()
	case "completeCoolDownItem":
		err = sess.CompleteCoolDownItem(req.Index)
	case "finishCoolDown":
		err = sess.FinishCoolDown()
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown command: " + command})
		return
	}

	if err != nil {
		writeJSON(w, commandStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// adviseRegression fetches a regression suggestion for a pain-flagged
// exercise. Advisory only: failures are logged, never surfaced as command
// errors, and the tick source is never blocked.
func (s *Server) adviseRegression(ctx context.Context, sess *engine.Session, req commandRequest) {
	if s.advisor == nil {
		return
	}
	sug, err := s.advisor.SuggestRegression(ctx, req.ExerciseID, regression.PainContext{
		Area:     req.Area,
		Severity: req.Severity,
		Note:     req.Note,
	})
	if err != nil {
		s.log.Warn("regression advisory failed", "exercise_id", req.ExerciseID, "error", err)
		return
	}
	if err := sess.RecordSuggestion(sug); err != nil {
		s.log.Warn("recording suggestion failed", "exercise_id", req.ExerciseID, "error", err)
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Snapshots())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	if !s.registry.Remove(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	s.log.Info("session discarded", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetryPersist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	if err := s.registry.RetryPersist(r.Context(), id); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"persisted": true})
}

func (s *Server) handleHistorySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := s.db.QuerySessions(r.Context(), start, end, 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHistorySessionSets(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	rows, err := s.db.GetSessionSets(r.Context(), id, 1)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.catalog.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// liveSession resolves the {id} URL param against the registry, writing the
// error response itself when the session cannot be found.
func (s *Server) liveSession(w http.ResponseWriter, r *http.Request) (*engine.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	sess, ok := s.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// commandStatus maps engine errors onto HTTP statuses: invalid-state
// commands are conflicts, everything else is a bad request.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrSessionComplete),
		errors.Is(err, engine.ErrInvalidCommand),
		errors.Is(err, engine.ErrRestActive),
		errors.Is(err, engine.ErrNoActiveSet),
		errors.Is(err, engine.ErrNoActiveRest):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
