package prommetrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/framesampler/pkg/ports"
)

// Server serves /metrics and /healthz.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger ports.Logger
}

// Handler returns the HTTP handler exposing the observer's registry.
// Go runtime and process collectors are added to the same registry.
func (o *Observer) Handler() http.Handler {
	o.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMux(o.registry)
}

func newMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Listen binds addr and starts serving in the background.
func Listen(addr string, handler http.Handler, logger ports.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv:    &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
		logger: logger.WithComponent("metrics"),
	}

	go func() {
		s.logger.Debug("Metrics server listening on %s", ln.Addr())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error: %s", err)
		}
	}()

	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
