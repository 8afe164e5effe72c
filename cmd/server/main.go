// Command server runs the event travel planner API: two-phase TOTP
// authentication, tenant-scoped event management and the budget audit
// trail. Dependency wiring happens here; business logic lives in the
// internal services.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/audit"
	authhandler "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/handler"
	authservice "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/service"
	credentialstore "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/store/credential"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/token"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/diff"
	eventhandler "github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/handler"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/history"
	eventservice "github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/service"
	eventstore "github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/store"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/config"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/database"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/health"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/logger"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/metrics"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/organization"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/middleware"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/user"
	"github.com/gsm1298/event-travel-planner-backend-sub000/pkg/requesttime"
)

// sessionValidator adapts the JWT issuer to the middleware's claims
// shape.
type sessionValidator struct {
	issuer *token.Issuer
}

func (v sessionValidator) ValidateSessionToken(tokenString string) (*middleware.SessionClaims, error) {
	claims, err := v.issuer.ValidateSessionToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.SessionClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		OrgID:  claims.OrgID,
	}, nil
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing event-travel-planner",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var mailer email.Sender
	if cfg.SMTP.Host != "" {
		mailer = email.NewClient(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		mailer = &email.LogSender{Logger: log}
	}

	m := metrics.New()
	issuer := token.NewIssuer(cfg.JWTSigningKey, cfg.PendingTokenTTL, cfg.SessionTokenTTL)

	// Stores: Postgres when a database is configured, in-memory
	// otherwise so local development runs without infrastructure.
	var (
		credentials authservice.CredentialStore
		auditStore  audit.Store
		users       user.Store
		orgs        organization.Store
		flights     flight.Store
		events      eventstore.EventStore
		histStore   eventstore.HistoryStore
	)
	if pool != nil {
		db := pool.DB()
		credentials = credentialstore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
		users = user.NewPostgresStore(db)
		orgs = organization.NewPostgresStore(db)
		flights = flight.NewPostgresStore(db)
		events = eventstore.NewPostgresEventStore(db)
		histStore = eventstore.NewPostgresHistoryStore(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		memUsers := user.NewInMemoryStore()
		memFlights := flight.NewInMemoryStore()
		credentials = credentialstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		users = memUsers
		orgs = organization.NewInMemoryStore()
		flights = memFlights
		events = eventstore.NewInMemoryEventStore(memFlights)
		histStore = eventstore.NewInMemoryHistoryStore(memUsers, memFlights)
	}

	auditor := audit.NewPublisher(auditStore, audit.WithPublisherLogger(log))
	defer auditor.Close()

	authSvc := authservice.NewService(credentials, issuer, mailer,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditor),
		authservice.WithMetrics(m),
	)

	comparison := diff.Loose
	if cfg.DiffComparison == "strict" {
		comparison = diff.Strict
	}
	eventSvc := eventservice.New(events, flights, users, history.NewRecorder(histStore), mailer,
		eventservice.WithLogger(log),
		eventservice.WithMetrics(m),
		eventservice.WithComparison(comparison),
	)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(m.Middleware())

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	pendingAge := int(cfg.PendingTokenTTL.Seconds())
	sessionAge := int(cfg.SessionTokenTTL.Seconds())
	authH := authhandler.New(authSvc, log, pendingAge, sessionAge)
	authH.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionValidator{issuer}, log))
		authH.RegisterProtected(r)
		eventhandler.New(eventSvc, log).Register(r)
		organization.NewHandler(orgs, log).Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
