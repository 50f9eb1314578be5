package controller

import (
	"time"

	"github.com/MrGreenNV/bank-rest-test/internal/infrastructure/config"
	"github.com/MrGreenNV/bank-rest-test/internal/infrastructure/observability"
	customMW "github.com/MrGreenNV/bank-rest-test/internal/middleware"
	"github.com/MrGreenNV/bank-rest-test/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool           *pgxpool.Pool
	RedisClient    *redis.Client
	AccountService *service.AccountService
	Metrics        *observability.Metrics
	CORSConfig     config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	accountH := NewAccountController(deps.AccountService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/accounts", func(r chi.Router) {
		r.Post("/", accountH.Create)
		r.Get("/", accountH.List)

		// {ref} is a uuid or an account name. Money movement and rename are
		// addressed by uuid only; their handlers reject plain names.
		r.Get("/{ref}", accountH.Get)
		r.Delete("/{ref}", accountH.Delete)
		r.Post("/{ref}/deactivate", accountH.Deactivate)

		r.Patch("/{ref}/name", accountH.Rename)
		r.Post("/{ref}/deposit", accountH.Deposit)
		r.Post("/{ref}/withdraw", accountH.Withdraw)
		r.Post("/{ref}/transfer", accountH.Transfer)
	})

	return r
}
