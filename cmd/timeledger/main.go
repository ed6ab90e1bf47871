package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	adapthttp "timeledger/internal/adapter/http"
	"timeledger/internal/adapter/memory"
	"timeledger/internal/adapter/postgres"
	"timeledger/internal/app"
	"timeledger/internal/config"
	"timeledger/internal/domain"
	"timeledger/internal/export"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	var (
		users        domain.UserRepository
		authSessions domain.AuthSessionRepository
		clients      domain.ClientRepository
		work         domain.WorkSessionRepository
		invoices     domain.InvoiceRepository
	)

	if cfg.DevMode {
		log.Info("running with in-memory storage")
		db := memory.New()
		users = db.Users()
		authSessions = db.AuthSessions()
		clients = db.Clients()
		work = db.WorkSessions()
		invoices = db.Invoices()
	} else {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("db open", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		users = postgres.NewUserRepo(db)
		authSessions = postgres.NewAuthSessionRepo(db)
		clients = postgres.NewClientRepo(db)
		work = postgres.NewWorkSessionRepo(db)
		invoices = postgres.NewInvoiceRepo(db)
	}

	authSvc := app.NewAuthService(users, authSessions, app.NewLogMailer(log), cfg.BaseURL)
	clientSvc := app.NewClientService(clients, work, invoices)
	trackingSvc := app.NewTrackingService(work, clients)
	billingSvc := app.NewBillingService(work, invoices, clients)
	statsSvc := app.NewStatsService(work, invoices)

	srv := adapthttp.New(authSvc, clientSvc, trackingSvc, billingSvc, statsSvc,
		export.NewInvoiceRenderer(), log, cfg.WebDir)

	if cfg.OIDCEnabled() {
		provider, err := oidc.NewProvider(context.Background(), cfg.OIDCIssuer)
		if err != nil {
			log.Error("oidc provider", "error", err)
			os.Exit(1)
		}
		srv = srv.WithOIDC(adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: &oauth2.Config{
				ClientID:     cfg.OIDCClientID,
				ClientSecret: cfg.OIDCClientSecret,
				RedirectURL:  cfg.OIDCRedirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
		})
		log.Info("sso enabled", "issuer", cfg.OIDCIssuer)
	}

	httpServer := http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),

		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("server started listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
