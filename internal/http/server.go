// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
)

type Server struct {
	http.Server
	ledger  *services.LedgerService
	reports *services.ReportService
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ls *services.LedgerService, rs *services.ReportService, limiter *ratelimit.Limiter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	s := &Server{
		ledger:  ls,
		reports: rs,
		limiter: limiter,
		tracer:  trace.NewMiddleware(security.ClientIP),
		logger:  logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("PUT /api/budget", s.handleSetBudget)
	mux.HandleFunc("PUT /api/currency", s.handleSetCurrency)
	mux.HandleFunc("GET /api/backup", s.handleExport)
	mux.HandleFunc("POST /api/backup", s.handleImport)

	limited := limiter.Middleware(security.ClientIP, isWrite, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, security.ClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	})
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = limited(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// ListenAndServe serves until Shutdown. A clean shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "HTTP server shutting down", log.FieldOperation, log.OpShutdown)
	return s.Server.Shutdown(ctx)
}

func isWrite(r *http.Request) bool {
	return r.Method != http.MethodGet && r.Method != http.MethodHead
}
