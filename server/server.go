// Package server exposes the safety gate, the analytics router and the audit log over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniql-engine/queryguard/audit"
	"github.com/omniql-engine/queryguard/engine/analytics"
	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/gate"
	"github.com/omniql-engine/queryguard/engine/timestamp"
	"github.com/omniql-engine/queryguard/logging"
)

// Processor processes statements through the safety gate.
type Processor interface {
	Process(ctx context.Context, req gate.Request) (*gate.Result, error)
}

// Answerer answers analytics questions.
type Answerer interface {
	Answer(ctx context.Context, question string) (*analytics.Answer, error)
}

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-Id"

type server struct {
	gate     Processor
	router   Answerer
	log      audit.Log
	now      func() time.Time
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*server)

// WithClock sets the clock used for the "today" window of the log listing.
func WithClock(now func() time.Time) Option {
	return func(s *server) {
		s.now = now
	}
}

// WithGatherer sets the registry served on /metrics. Default is prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *server) {
		s.gatherer = g
	}
}

// New creates the HTTP handler of the service.
func New(g Processor, r Answerer, log audit.Log, opts ...Option) http.Handler {
	s := &server{
		gate:     g,
		router:   r,
		log:      log,
		now:      time.Now,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process-query", s.processQuery)
	mux.HandleFunc("POST /api/chat", s.chat)
	mux.HandleFunc("GET /api/malicious-logs", s.maliciousLogs)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Welcome to the backend!"))
	})
	return withRequestLogger(mux)
}

type processQueryRequest struct {
	Query string `json:"query"`
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type maliciousLogsResponse struct {
	TodayAttacks     int64          `json:"todayAttacks"`
	MaliciousQueries []audit.Record `json:"maliciousQueries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) processQuery(w http.ResponseWriter, r *http.Request) {
	var req processQueryRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "Query is required"})
		return
	}

	res, err := s.gate.Process(r.Context(), gate.Request{Query: req.Query, IP: clientIP(r)})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	status := http.StatusOK
	if res.Status == gate.StatusBlocked {
		status = http.StatusForbidden
	}
	writeJSON(r.Context(), w, status, res)
}

func (s *server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "Prompt is required"})
		return
	}

	answer, err := s.router.Answer(r.Context(), req.Prompt)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, answer)
}

func (s *server) maliciousLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.now()

	today, err := s.log.Count(ctx, timestamp.Format(timestamp.StartOfDay(now)), timestamp.Format(timestamp.EndOfDay(now)))
	if err != nil {
		writeError(ctx, w, errs.Wrap(errs.Store, "audit.count", err))
		return
	}
	records, err := s.log.All(ctx)
	if err != nil {
		writeError(ctx, w, errs.Wrap(errs.Store, "audit.all", err))
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	writeJSON(ctx, w, http.StatusOK, maliciousLogsResponse{TodayAttacks: today, MaliciousQueries: records})
}

// clientIP returns the first X-Forwarded-For entry, or the host of the remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decode reads the JSON body into v. An empty body leaves v zero so the
// handler reports the missing field.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		logging.FromCtx(r.Context()).Debug("decoding request body", "error", err)
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	kind, ok := errs.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case errs.Validation, errs.Parse, errs.Translation:
		return http.StatusBadRequest
	case errs.Capability:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.FromCtx(ctx).Error("request failed", "error", err)
	}
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, context.Canceled) {
		logging.FromCtx(ctx).Warn("writing response", "error", err)
	}
}

// ============================================================================
// MIDDLEWARE
// ============================================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogger attaches a logger carrying the request id to the request context
// and logs every finished request.
func withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		log := slog.Default().With("request_id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(logging.NewContext(r.Context(), log)))

		log.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start).String())
	})
}
