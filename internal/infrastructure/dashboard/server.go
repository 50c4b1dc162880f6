// Package dashboard serves sealed run reports to the visualization
// frontend as JSON over HTTP.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"

	"solarcalc/internal/application/port/output"
)

type Server struct {
	store  output.ReportStore
	addr   string
	logger output.LoggerPort
}

func New(store output.ReportStore, addr string, logger output.LoggerPort) *Server {
	if addr == "" {
		addr = ":8090"
	}
	return &Server{store: store, addr: addr, logger: logger}
}

func (s *Server) Router() http.Handler {
	requestLogger := httplog.NewLogger("solarcalc-dashboard", httplog.Options{
		JSON:    true,
		Concise: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(requestLogger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/reports", s.listReports)
	r.Get("/reports/{id}", s.getReport)

	return r
}

// Serve blocks until ctx is cancelled, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("Dashboard listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("List reports failed", "error", err)
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
