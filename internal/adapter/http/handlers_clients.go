package adapthttp

import (
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ClientRequest is the create/update payload for a client. The hourly rate
// arrives in display units (dollars) and is converted to cents once, here at
// the boundary.
type ClientRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	HourlyRate float64 `json:"hourlyRate"`
	Notes      string  `json:"notes"`
}

// Bind satisfies [render.Binder].
func (cr *ClientRequest) Bind(r *http.Request) error {
	if cr.Name == "" {
		return errors.New("name is required")
	}
	if cr.HourlyRate < 0 {
		return errors.New("hourly rate cannot be less than zero")
	}
	return nil
}

func (cr *ClientRequest) rateCents() int64 {
	return int64(math.Round(cr.HourlyRate * 100))
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	items, err := s.clients.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	req := &ClientRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	client, err := s.clients.Create(r.Context(), currentUser(r).ID, req.Name, req.Email, req.rateCents(), req.Notes)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	req := &ClientRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	client, err := s.clients.Update(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), req.Name, req.Email, req.rateCents(), req.Notes)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.clients.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Client deleted"})
}
