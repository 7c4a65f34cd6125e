package router

import (
	"net/http"

	_ "pet-adoption-economy/docs"
	"pet-adoption-economy/internal/adapters/storage/memory"
	"pet-adoption-economy/internal/adapters/storage/records"
	"pet-adoption-economy/internal/domain/audit"
	"pet-adoption-economy/internal/domain/economy"
	"pet-adoption-economy/internal/domain/pets"
	"pet-adoption-economy/internal/domain/users"
	"pet-adoption-economy/internal/middleware"
	"pet-adoption-economy/internal/platform/logger"
	"pet-adoption-economy/internal/platform/metrics"
	"pet-adoption-economy/internal/ports/auth"
	"pet-adoption-economy/internal/ports/recordstore"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  auth.TokenIssuer  // puede ser nil (modo dev: login sin token)

	// Opcional: si no viene, in-memory.
	Store recordstore.Store

	Logger logger.Logger

	// Auditor recibe las entradas de la economía. Si es nil se escribe
	// sincrónicamente con audit.Service.
	Auditor audit.Recorder

	// Metrics y Gatherer van juntos; si Metrics es nil se crea un registry propio.
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// RateLimiter opcional; su ciclo de vida es de quien lo crea.
	RateLimiter *middleware.RateLimiter

	AdminEmails   []string
	CommitRetries int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	collector, gatherer := opts.Metrics, opts.Gatherer
	if collector == nil || gatherer == nil {
		reg := prometheus.NewRegistry()
		collector, gatherer = metrics.NewCollector(reg), reg
	}

	store := opts.Store
	if store == nil {
		store = memory.NewStore()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLogger(log, collector))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler(gatherer))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	petsSvc := pets.NewService(records.NewPets(store))
	usersSvc := users.NewService(records.NewUsers(store)).WithAdmins(opts.AdminEmails)
	auditSvc := audit.NewService(records.NewAudit(store), log)

	var recorder audit.Recorder = auditSvc
	if opts.Auditor != nil {
		recorder = opts.Auditor
	}
	economySvc := economy.NewService(records.NewEconomy(store), recorder, log).
		WithObserver(collector).
		WithAttempts(opts.CommitRetries)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, opts.TokenIssuer)
	pets.RegisterRoutes(r, petsSvc)
	economy.RegisterRoutes(r, economySvc, log)
	audit.RegisterRoutes(r, auditSvc)

	return r
}
