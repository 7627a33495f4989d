// Package http serves the JSON API for entries, summaries and report
// downloads.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"incomebook/internal/amqp"
	"incomebook/internal/core"
	"incomebook/internal/export"
	"incomebook/internal/log"
	"incomebook/internal/middleware/ratelimit"
	"incomebook/internal/middleware/security"
	"incomebook/internal/middleware/trace"
)

// EntryStore is the part of the ledger the API uses.
type EntryStore interface {
	GetAll(ctx context.Context) ([]core.Entry, error)
	Get(ctx context.Context, id string) (core.Entry, error)
	Add(ctx context.Context, in core.EntryInput) (core.Entry, error)
	Update(ctx context.Context, id string, patch core.EntryPatch) (core.Entry, error)
	Delete(ctx context.Context, id string) (bool, error)
	MonthlyData(ctx context.Context) ([]core.MonthlyData, error)
	YearlyTotals(ctx context.Context, year int) (core.YearlyTotals, error)
	Years(ctx context.Context) ([]int, error)
}

// ReportGenerator builds downloadable reports.
type ReportGenerator interface {
	Generate(ctx context.Context, opts export.Options) (export.Artifact, error)
}

// ExportQueue hands export requests to the background worker.
type ExportQueue interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

// Deps are the collaborators of the server. Queue may be nil, in which case
// queued exports answer 503.
type Deps struct {
	Store   EntryStore
	Reports ReportGenerator
	Queue   ExportQueue
	Logger  *log.Logger

	// RequestsPerMinute limits writes per client; 0 uses the default.
	RequestsPerMinute int
}

type Server struct {
	http.Server
	store   EntryStore
	reports ReportGenerator
	queue   ExportQueue
	logger  *log.Logger

	limiter      *ratelimit.Limiter
	trace        *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector(logger)
	s := &Server{
		store:   deps.Store,
		reports: deps.Reports,
		queue:   deps.Queue,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RequestsPerMinute}),
		trace:   trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PATCH /api/entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)

	mux.HandleFunc("GET /api/summary/monthly", s.handleMonthlySummary)
	mux.HandleFunc("GET /api/summary/yearly", s.handleYearlySummary)
	mux.HandleFunc("GET /api/summary/years", s.handleYears)
	mux.HandleFunc("GET /api/payment-methods", handlePaymentMethods)

	mux.HandleFunc("GET /api/reports/{kind}", s.handleReport)
	mux.HandleFunc("POST /api/exports", s.handleQueueExport)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
	}
	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, onLimit, http.MethodPost, http.MethodPatch, http.MethodDelete)(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.trace.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Metrics returns request counters from the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.trace.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once the entry collection can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.store.Years(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	type method struct {
		Value core.PaymentMethod `json:"value"`
		Label string             `json:"label"`
	}
	var out []method
	for _, m := range core.PaymentMethods() {
		out = append(out, method{Value: m, Label: m.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}
