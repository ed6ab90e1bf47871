package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type StartTimerRequest struct {
	ClientID string `json:"clientId"`
	Tag      string `json:"tag"`
}

func (str *StartTimerRequest) Bind(r *http.Request) error {
	return nil
}

type ManualSessionRequest struct {
	ClientID  string    `json:"clientId"`
	Tag       string    `json:"tag"`
	Notes     string    `json:"notes"`
	Hours     float64   `json:"hours"`
	StartedAt time.Time `json:"startedAt"`
}

func (msr *ManualSessionRequest) Bind(r *http.Request) error {
	if msr.Hours <= 0 {
		return errors.New("hours must be greater than zero")
	}
	if msr.StartedAt.IsZero() {
		return errors.New("startedAt is required")
	}
	return nil
}

type UpdateSessionRequest struct {
	Tag   string `json:"tag"`
	Notes string `json:"notes"`
}

func (usr *UpdateSessionRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	items, err := s.tracking.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.tracking.Current(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	// No running timer is a normal state, not an error.
	if session == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	req := &StartTimerRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.tracking.StartTimer(r.Context(), currentUser(r).ID, req.ClientID, req.Tag)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	session, err := s.tracking.StopTimer(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogManual(w http.ResponseWriter, r *http.Request) {
	req := &ManualSessionRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.tracking.LogManual(r.Context(), currentUser(r).ID, req.ClientID, req.Tag, req.Notes, req.Hours, req.StartedAt)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	req := &UpdateSessionRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.tracking.Update(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), req.Tag, req.Notes)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracking.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Session deleted"})
}
