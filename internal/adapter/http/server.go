// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"log/slog"
	"net/http"

	"timeledger/internal/app"
	"timeledger/internal/export"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the optional SSO setup. When Enabled is false the SSO
// routes respond 404.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	clients  *app.ClientService
	tracking *app.TrackingService
	billing  *app.BillingService
	stats    *app.StatsService
	exporter *export.InvoiceRenderer

	oidcConfig  OIDCConfig
	log         *slog.Logger
	webDir      string
	disableAuth bool
	testUser    int64
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, clients *app.ClientService, tracking *app.TrackingService, billing *app.BillingService, stats *app.StatsService, exporter *export.InvoiceRenderer, log *slog.Logger, webDir string) *Server {
	return &Server{
		auth:     auth,
		clients:  clients,
		tracking: tracking,
		billing:  billing,
		stats:    stats,
		exporter: exporter,
		log:      log,
		webDir:   webDir,
	}
}

// WithOIDC enables SSO login against the given provider.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithoutAuth bypasses session validation, acting as the given user. Tests only.
func (s *Server) WithoutAuth(userID int64) *Server {
	s.disableAuth = true
	s.testUser = userID
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/verify-email", s.handleVerifyEmail)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/sso/login", s.handleSSOLogin)
		r.Get("/auth/sso/callback", s.handleSSOCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Get("/clients", s.handleListClients)
			r.Post("/clients", s.handleCreateClient)
			r.Put("/clients/{id}", s.handleUpdateClient)
			r.Delete("/clients/{id}", s.handleDeleteClient)

			r.Get("/work", s.handleListSessions)
			r.Get("/work/current", s.handleCurrentSession)
			r.Post("/work/start", s.handleStartTimer)
			r.Post("/work/stop/{id}", s.handleStopTimer)
			r.Post("/work/manual", s.handleLogManual)
			r.Put("/work/{id}", s.handleUpdateSession)
			r.Delete("/work/{id}", s.handleDeleteSession)

			r.Get("/invoices", s.handleListInvoices)
			r.Get("/invoices/billable", s.handleListBillable)
			r.Get("/invoices/invoiced", s.handleListInvoiced)
			r.Post("/invoices", s.handleCreateInvoice)
			r.Put("/invoices/{id}/status", s.handleSetInvoiceStatus)
			r.Delete("/invoices/{id}", s.handleDeleteInvoice)
			r.Get("/invoices/{id}/export", s.handleExportInvoice)

			r.Get("/stats/daily", s.handleDailyStats)
			r.Get("/stats/summary", s.handleSummaryStats)
		})
	})

	r.Handle("/*", spaFromDisk(s.webDir))

	return withNoCache(r)
}
