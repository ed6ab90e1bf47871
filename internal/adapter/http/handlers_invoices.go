package adapthttp

import (
	"fmt"
	"net/http"

	"timeledger/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type CreateInvoiceRequest struct {
	ClientID   string   `json:"clientId"`
	SessionIDs []string `json:"sessions"`
}

// Bind satisfies [render.Binder]. Selection rules live in the billing
// service; the request itself has no shape beyond the field names.
func (cir *CreateInvoiceRequest) Bind(r *http.Request) error {
	return nil
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (ssr *SetStatusRequest) Bind(r *http.Request) error {
	return nil
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	items, err := s.billing.ListInvoices(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListBillable(w http.ResponseWriter, r *http.Request) {
	items, err := s.billing.ListBillable(r.Context(), currentUser(r).ID, r.URL.Query().Get("clientId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListInvoiced(w http.ResponseWriter, r *http.Request) {
	items, err := s.billing.ListInvoiced(r.Context(), currentUser(r).ID, r.URL.Query().Get("clientId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	req := &CreateInvoiceRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	inv, err := s.billing.CreateInvoice(r.Context(), currentUser(r).ID, req.ClientID, req.SessionIDs)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	req := &SetStatusRequest{}
	if err := render.Bind(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	inv, err := s.billing.SetStatus(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), domain.InvoiceStatus(req.Status))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.billing.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Invoice deleted"})
}

func (s *Server) handleExportInvoice(w http.ResponseWriter, r *http.Request) {
	inv, client, sessions, err := s.billing.InvoiceDetail(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+inv.ID+".html"))
	if err := s.exporter.Render(w, inv, client, sessions); err != nil {
		s.log.Error("render invoice export", "invoice", inv.ID, "error", err)
	}
}
