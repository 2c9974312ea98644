package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type startSessionRequest struct {
	WorkoutID string `json:"workout_id"`
}

type addSessionExerciseRequest struct {
	ExerciseID string `json:"exerciseId"`
}

type addExerciseSetRequest struct {
	SessionExerciseID string  `json:"sessionExerciseId"`
	Reps              int     `json:"reps"`
	Weight            float64 `json:"weight"`
}

type logSetRequest struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Notes  *string `json:"notes"`
}

type completeSetRequest struct {
	SetIndex int `json:"setIndex"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	session, err := s.db.StartSession(r.Context(), userID(r), req.WorkoutID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.db.GetActiveSession(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	// No active session is a normal state, not an error; clients poll this.
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleCompletedSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.GetCompletedSessions(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.db.EndSession(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleAddSessionExercise(w http.ResponseWriter, r *http.Request) {
	var req addSessionExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	se, err := s.db.AddSessionExercise(r.Context(), userID(r), chi.URLParam(r, "id"), req.ExerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, se)
}

func (s *Server) handleAddExerciseSet(w http.ResponseWriter, r *http.Request) {
	var req addExerciseSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	set, err := s.db.AddExerciseSet(r.Context(), userID(r), req.SessionExerciseID, req.Reps, req.Weight)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	set, err := s.db.LogSet(r.Context(), userID(r), chi.URLParam(r, "id"), req.Reps, req.Weight, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// handleCompleteSet marks one of a session exercise's sets completed by its
// zero-based position. The URL id names the session exercise, not the set.
func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	var req completeSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	set, err := s.db.CompleteSetByIndex(r.Context(), userID(r), chi.URLParam(r, "id"), req.SetIndex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}
