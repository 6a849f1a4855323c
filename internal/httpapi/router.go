package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"audiogw/internal/httpapi/handlers"
	"audiogw/internal/observability/metrics"
	"audiogw/internal/pkg/logger"
	"audiogw/internal/pkg/middleware"
	"audiogw/internal/roex"
)

type Deps struct {
	Roex           *roex.Client
	Log            *logger.Logger
	Metrics        *metrics.Collector
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// ---- CORS ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           600,
	}))

	// ---- MIDDLEWARE ----
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(d.Log))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.Recovery(d.Log))

	h := handlers.New(handlers.Deps{
		Roex:    d.Roex,
		Log:     d.Log,
		Metrics: d.Metrics,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- AUDIO ----
	r.Post("/process", middleware.WrapHandler(d.Log, h.Process))
	r.Post("/status", h.Status)
	r.Post("/upload/signed-url", middleware.WrapHandler(d.Log, h.SignedUploadURL))

	// ---- METRICS ----
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
