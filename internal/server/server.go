// Package server exposes the comparator over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcncl/jsoncompare/internal/comparator"
	"github.com/mcncl/jsoncompare/internal/config"
	"github.com/mcncl/jsoncompare/internal/errors"
	"github.com/mcncl/jsoncompare/internal/formatter"
	"github.com/mcncl/jsoncompare/internal/logging"
	"github.com/mcncl/jsoncompare/internal/models"
	"github.com/mcncl/jsoncompare/internal/parser"
)

const shutdownTimeout = 10 * time.Second

const usage = `JSON Comparison API
====================

Endpoint: GET or POST /compare

Request Body:
{
  "expected": {...},
  "actual": {...}
}

Without a body, the values may be passed as query parameters:
  GET /compare?expected={...}&actual={...}

Add ?format=text for a plain text comparison tree.

Example:
--------
curl -X POST http://localhost%s/compare \
  -H "Content-Type: application/json" \
  -d '{
    "expected": {"name": "alice", "age": 30},
    "actual": {"name": "bob", "age": 30}
  }'

Response:
---------
{"isEqual": false, "differences": [{"path": ["name"], "kind": "ValueMismatch", "expected": "alice", "actual": "bob"}]}
`

// CompareRequest is the body accepted by /compare
type CompareRequest struct {
	Expected json.RawMessage `json:"expected"`
	Actual   json.RawMessage `json:"actual"`
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes why a request produced no report
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server serves comparisons over HTTP
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	router    chi.Router
	formatter *formatter.Formatter
}

// New builds a Server and its routes
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		formatter: formatter.NewFormatter(formatter.Options{Color: false, ShowStats: cfg.Output.ShowStats}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, errors.NewRequestError(
			fmt.Sprintf("method %s not allowed", r.Method), nil))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, errors.NewRequestError(
			fmt.Sprintf("no route for %s", r.URL.Path), nil))
	})

	r.Get("/", s.handleUsage)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/compare", s.handleCompare)
	r.Post("/compare", s.handleCompare)

	s.router = r
	return s
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleUsage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	addr := s.cfg.Server.Addr
	if !strings.HasPrefix(addr, ":") {
		if _, port, err := net.SplitHostPort(addr); err == nil {
			addr = ":" + port
		}
	}
	fmt.Fprintf(w, usage, addr)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, errors.NewRequestError(
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err))
			return
		}
		writeError(w, r, http.StatusBadRequest, errors.NewRequestError("failed to read request body", err))
		return
	}

	expected, actual, err := s.decodeValues(body, r.URL.Query())
	if err != nil {
		logger.Debug("rejected compare request", "error", err)
		writeError(w, r, errors.HTTPStatus(err), err)
		return
	}

	var stats *models.Stats
	opts := []comparator.Option{comparator.OptionMaxDepth(s.cfg.MaxDepth)}
	if s.cfg.Output.ShowStats {
		stats = &models.Stats{}
		opts = append(opts, comparator.OptionSetStats(stats))
	}

	report, err := comparator.Compare(expected, actual, opts...)
	if err != nil {
		writeError(w, r, errors.HTTPStatus(err), err)
		return
	}
	logger.Debug("compared values", "equal", report.IsEqual, "differences", len(report.Differences))

	if strings.EqualFold(r.URL.Query().Get("format"), formatter.TextFormat) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := s.formatter.FormatText(w, report, stats); err != nil {
			logger.Error("failed to write report", "error", err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// decodeValues reads expected and actual from the body, or from the query
// string when the body is empty
func (s *Server) decodeValues(body []byte, query url.Values) (models.Value, models.Value, error) {
	var expectedRaw, actualRaw []byte

	if len(bytes.TrimSpace(body)) == 0 {
		if query.Has("expected") {
			expectedRaw = []byte(query.Get("expected"))
		}
		if query.Has("actual") {
			actualRaw = []byte(query.Get("actual"))
		}
	} else {
		var req CompareRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return models.Value{}, models.Value{}, errors.NewRequestError(
				"request body must be a JSON object with \"expected\" and \"actual\"",
				fmt.Errorf("%w: %w", errors.ErrInvalidJSON, err))
		}
		expectedRaw, actualRaw = req.Expected, req.Actual
	}

	if expectedRaw == nil {
		return models.Value{}, models.Value{}, errors.NewRequestError(`request is missing "expected"`, errors.ErrMissingField)
	}
	if actualRaw == nil {
		return models.Value{}, models.Value{}, errors.NewRequestError(`request is missing "actual"`, errors.ErrMissingField)
	}

	expected, err := parser.ParseBytes(expectedRaw, parser.WithMaxDepth(s.cfg.MaxDepth))
	if err != nil {
		return models.Value{}, models.Value{}, errors.Annotate(err, "expected")
	}
	actual, err := parser.ParseBytes(actualRaw, parser.WithMaxDepth(s.cfg.MaxDepth))
	if err != nil {
		return models.Value{}, models.Value{}, errors.Annotate(err, "actual")
	}
	return expected, actual, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("failed to write response", "status", code, "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	writeJSON(w, r, code, ErrorBody{Error: ErrorDetail{
		Type:    string(errors.TypeOf(err)),
		Message: err.Error(),
	}})
}

// requestLogger logs one line per request and stores a request-scoped
// logger in the context
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			logger := base.With("request_id", middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), logger)))

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr)
		})
	}
}
