// Package server serves a module tree together with a live import map.
//
// Routes:
//
//	GET /importmap.json   import map regenerated from the tree on every request
//	GET /healthz          liveness probe
//	GET /*                static files from the root; dot-prefixed paths are hidden
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/esmap/pkg/buildinfo"
	"github.com/matzehuels/esmap/pkg/errors"
	"github.com/matzehuels/esmap/pkg/importmap"
	"github.com/matzehuels/esmap/pkg/scan"
)

// ContentType is the media type of import map documents.
const ContentType = "application/importmap+json"

// MapPath is the route of the generated import map.
const MapPath = "/importmap.json"

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr            string
	Scan            scan.Options
	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// Server is an http.Handler for one module root.
type Server struct {
	http.Handler
	root   string
	opts   Options
	logger *log.Logger
}

// New builds the router for root.
func New(root string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	// A served map is never persisted per request.
	opts.Scan.Output = ""
	opts.Scan.Logger = logger

	s := &Server{root: root, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))

	r.Get(MapPath, s.handleImportMap)
	r.Get("/healthz", handleHealth)
	r.Get("/*", s.handleStatic(http.FileServer(http.Dir(root))))

	s.Handler = r
	return s
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down", "addr", ln.Addr().String())

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		s.logger.Info("serving", "root", s.root, "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", ln.Addr())
		}
		return nil
	})
	return g.Wait()
}

// Listen opens the configured address. An empty address picks a free
// loopback port.
func (s *Server) Listen() (net.Listener, error) {
	addr := s.opts.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot listen on %s", addr)
	}
	return ln, nil
}

func (s *Server) handleImportMap(w http.ResponseWriter, r *http.Request) {
	m, err := scan.Generate(r.Context(), s.root, s.opts.Scan)
	if err != nil {
		s.logger.Error("generate import map", "root", s.root, "err", err)
		http.Error(w, errors.UserMessage(err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	if err := importmap.WriteJSON(m, w); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleStatic serves files while hiding every dot-prefixed path segment,
// matching what the walk never visits.
func (s *Server) handleStatic(files http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hidden(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
}

func hidden(urlPath string) bool {
	for _, seg := range strings.Split(urlPath, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// requestLogger logs one debug line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					"id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"elapsed", time.Since(start).Round(time.Microsecond))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
