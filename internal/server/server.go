// Package server exposes a parsed Packages index over HTTP.
//
// The server holds one immutable dependency relation, loaded before
// startup, and builds graphs per request. Routes:
//
//	GET /healthz
//	GET /api/graph/{package}   JSON node/edge document
//	GET /api/tree/{package}    ASCII tree, text/plain
//	GET /api/svg/{package}     graphviz-rendered SVG
//
// All /api routes accept ?depth= and ?filter= query parameters.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/graphio"
	"github.com/aptgraph/aptgraph/pkg/index"
	"github.com/aptgraph/aptgraph/pkg/render/dot"
	"github.com/aptgraph/aptgraph/pkg/render/tree"
)

// Server serves dependency graphs built from a fixed index snapshot.
type Server struct {
	rel          index.Relation
	logger       *log.Logger
	defaultDepth int
}

// New creates a server over the given relation. defaultDepth applies
// when a request omits the depth parameter; values below 1 fall back
// to 1.
func New(rel index.Relation, logger *log.Logger, defaultDepth int) *Server {
	if defaultDepth < 1 {
		defaultDepth = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{rel: rel, logger: logger, defaultDepth: defaultDepth}
}

// Router builds the chi router with logging and request-ID middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph/{package}", s.handleGraph)
		r.Get("/tree/{package}", s.handleTree)
		r.Get("/svg/{package}", s.handleSVG)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "packages", len(s.rel))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// statusWriter captures the response status for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// requestLogger tags each request with a UUID and logs method, path,
// status and duration on completion.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"packages": len(s.rel),
	})
}

// buildGraph resolves the package, depth and filter for a request and
// runs the traversal. It writes the error response itself and returns
// ok=false when the request is invalid.
func (s *Server) buildGraph(w http.ResponseWriter, r *http.Request) (depgraph.Graph, string, bool) {
	pkg := chi.URLParam(r, "package")
	if err := errors.ValidatePackageName(pkg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, "", false
	}
	if !s.rel.Has(pkg) {
		writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodePackageNotFound, "package %q not found in index", pkg))
		return nil, "", false
	}

	depth := s.defaultDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest,
				errors.New(errors.ErrCodeInvalidDepth, "depth must be a non-negative integer, got %q", v))
			return nil, "", false
		}
		depth = n
	}
	filter := r.URL.Query().Get("filter")

	return depgraph.Build(pkg, s.rel, depth, filter), pkg, true
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, root, ok := s.buildGraph(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := graphio.WriteJSON(w, g, root); err != nil {
		s.logger.Error("write graph response", "err", err)
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	g, root, ok := s.buildGraph(w, r)
	if !ok {
		return
	}
	detailed := r.URL.Query().Get("detailed") == "true"
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(tree.Render(g, root, tree.Options{Detailed: detailed})))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	g, root, ok := s.buildGraph(w, r)
	if !ok {
		return
	}
	svg, err := dot.RenderSVG(r.Context(), dot.ToDOT(g, root))
	if err != nil {
		writeError(w, http.StatusInternalServerError,
			errors.Wrap(errors.ErrCodeInternal, err, "render svg for %s", root))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.UserMessage(err),
	})
}
