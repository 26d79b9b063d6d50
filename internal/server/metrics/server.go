package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/logging"
)

const (
	// DefaultReadHeaderTimeout is the read header timeout for the metrics listener.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout is the write timeout for the metrics listener.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the idle timeout for the metrics listener.
	DefaultIdleTimeout = 60 * time.Second
)

// Server serves /metrics on its own address, apart from user traffic.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

func NewServer(addr string, m *Metrics, l logging.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
		logger: l.With("module", "metrics_server"),
	}
}

// Run serves until ctx is done, then shuts down within shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping metrics server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting metrics server", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
