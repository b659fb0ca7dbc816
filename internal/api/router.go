package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tradedocs/lcverify/internal/logger"
	"github.com/tradedocs/lcverify/internal/reconciliation"
	"github.com/tradedocs/lcverify/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted. gatherer
// backs /metrics and may be nil.
func NewRouter(
	svc *reconciliation.Service,
	discRepo *repository.DiscrepancyRepo,
	gatherer prometheus.Gatherer,
	maxUploadBytes int64,
	log logrus.FieldLogger,
) http.Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	h := &Handlers{
		svc:       svc,
		discRepo:  discRepo,
		validate:  validator.New(),
		maxUpload: maxUploadBytes,
		log:       logger.WithComponent(log, "api"),
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Documents.
		r.Post("/documents", h.RegisterDocument)
		r.Get("/documents/{id}", h.GetDocument)

		// Document sets.
		r.Post("/document-sets/{setID}/analyze", h.AnalyzeSet)
		r.Get("/document-sets/{setID}/report", h.GetReport)
		r.Get("/document-sets/{setID}/discrepancies", h.ListSetDiscrepancies)

		// Discrepancies across sets.
		r.Get("/discrepancies", h.ListDiscrepancies)
		r.Get("/discrepancies/summary", h.GetDiscrepancySummary)
	})

	return r
}
