package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	readinessTimeout  = 2 * time.Second

	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadinessReport is the /readyz response body.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Server serves liveness, readiness and Prometheus metrics.
type Server struct {
	port   int
	checks []ReadinessCheck
	logger *zerolog.Logger
}

func NewServer(port int, logger *zerolog.Logger, checks ...ReadinessCheck) *Server {
	return &Server{
		port:   port,
		checks: checks,
		logger: logger,
	}
}

// Handler returns the HTTP routes served by the health server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	report := s.Ready(ctx)

	code := http.StatusOK
	if report.Status != statusOK {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.logger.Warn().Err(err).Msg("writing readiness report")
	}
}

// Ready runs every check concurrently. One failing check makes the whole report unavailable.
func (s *Server) Ready(ctx context.Context) ReadinessReport {
	report := ReadinessReport{Status: statusOK}
	if len(s.checks) == 0 {
		return report
	}

	report.Checks = make(map[string]string, len(s.checks))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, c := range s.checks {
		wg.Add(1)

		go func() {
			defer wg.Done()

			result := statusOK
			if err := c.Check(ctx); err != nil {
				result = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()

			report.Checks[c.Name] = result
			if result != statusOK {
				report.Status = statusUnavailable
			}
		}()
	}

	wg.Wait()

	return report
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		//nolint:errcheck,contextcheck // shutdown after cancellation needs a fresh context
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Int("readiness_checks", len(s.checks)).Msg("health server listening")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
