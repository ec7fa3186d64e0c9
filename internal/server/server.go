// Package server exposes the documentation pipeline over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/source"
)

// VisitCounter is the persisted visit counter.
type VisitCounter interface {
	Visits(ctx context.Context) (int64, error)
	IncrementVisits(ctx context.Context) (int64, error)
}

// GeneratorFactory returns a completer for one request. A non-empty apiKey
// replaces the configured credential.
type GeneratorFactory func(ctx context.Context, apiKey string) (docgen.LLMCompleter, string, error)

// Options wires a Server.
type Options struct {
	Sources       *source.Registry
	Visits        VisitCounter
	NewGenerator  GeneratorFactory
	Pipeline      docgen.Config
	TreeCacheSize int
	// TreeCacheTTL bounds how long a tree listing is reused; zero means five minutes.
	TreeCacheTTL time.Duration
}

// Server handles the /api routes.
type Server struct {
	sources      *source.Registry
	visits       VisitCounter
	newGenerator GeneratorFactory
	cfg          docgen.Config
	trees        *treeCache
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Sources == nil {
		return nil, fmt.Errorf("server: source registry is required")
	}
	if opts.NewGenerator == nil {
		return nil, fmt.Errorf("server: generator factory is required")
	}
	return &Server{
		sources:      opts.Sources,
		visits:       opts.Visits,
		newGenerator: opts.NewGenerator,
		cfg:          opts.Pipeline,
		trees:        newTreeCache(opts.TreeCacheSize, opts.TreeCacheTTL),
	}, nil
}

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/structure", s.handleStructure)
	mux.HandleFunc("POST /api/filter-files", s.handleFilterFiles)
	mux.HandleFunc("POST /api/fetch-content", s.handleFetchContent)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/document", s.handleDocument)
	mux.HandleFunc("GET /api/visits", s.handleVisits)
	mux.HandleFunc("POST /api/visits", s.handleIncrementVisits)
	return requestLog(cors(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("repodoc: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
