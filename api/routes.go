package api

import (
	"context"

	"github.com/gorilla/mux"

	"github.com/garnizeh/gigmarket/internal/config"
	"github.com/garnizeh/gigmarket/internal/db"
	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/internal/metrics"
	"github.com/garnizeh/gigmarket/internal/repository/sqlite"
)

// SetupRoutes builds the HTTP surface over the SQLite store. events receives
// committed marketplace events; nil discards them. Background upkeep such as
// rate limiter cleanup stops when ctx is done.
func SetupRoutes(ctx context.Context, cfg *config.Config, version, buildTime string, d *db.DB, events market.EventSink) *mux.Router {
	r := mux.NewRouter()

	limiter := NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limiter.StartCleanup(ctx, cfg.RateLimit.CleanupInterval, cfg.RateLimit.IdleTTL)

	// Middleware chain
	r.Use(RecoveryMiddleware)
	r.Use(CORSMiddleware)
	r.Use(IdentityMiddleware(cfg.JWTSecret))
	r.Use(LoggingMiddleware)
	r.Use(metrics.InstrumentHandler)
	r.Use(limiter.Middleware)

	// Repository
	repo := sqlite.New(d, logger)

	opts := market.Options{
		Logger:                 logger,
		Events:                 events,
		SummaryLimit:           cfg.Market.SummaryLimit,
		MaxListLimit:           cfg.Market.MaxListLimit,
		FillJobOnAccept:        cfg.Market.FillJobOnAccept,
		RejectSiblingsOnAccept: cfg.Market.RejectSiblingsOnAccept,
	}

	// Create handlers
	systemHandler := NewSystemHandler(d)
	authHandler := NewAuthHandler(repo, repo, cfg.JWTSecret, cfg.TokenDuration)
	jobsHandler := NewJobsHandler(market.NewCatalog(repo, opts))
	appsHandler := NewApplicationsHandler(market.NewWorkflow(repo, repo, opts))

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	apiV1 := r.PathPrefix("/v1").Subrouter()

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	authV1.HandleFunc("/signin", authHandler.Signin).Methods("POST")
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Jobs endpoints
	apiV1.HandleFunc("/categories", jobsHandler.Categories).Methods("GET")
	apiV1.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	apiV1.HandleFunc("/jobs/recent", jobsHandler.RecentJobs).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}/close", jobsHandler.CloseJob).Methods("POST")

	// Applications endpoints
	apiV1.HandleFunc("/jobs/{id}/applications", appsHandler.Submit).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/applications", appsHandler.ListForJob).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}/applications/mine", appsHandler.Mine).Methods("GET")
	apiV1.HandleFunc("/applications/{id}/decision", appsHandler.Decide).Methods("POST")

	return r
}
