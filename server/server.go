package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/siherrmann/nutricoach/audit"
	"github.com/siherrmann/nutricoach/model"
)

// maxBodyBytes limits the size of an analyze request
const maxBodyBytes = 1 << 20

// Analyzer answers ingredient questions
type Analyzer interface {
	AnalyzeWithTrace(ctx context.Context, q model.Query) (model.StructuredAnswer, model.Trace)
}

// AuditLog stores answered requests
type AuditLog interface {
	Record(ctx context.Context, entry audit.Entry) error
	Recent(ctx context.Context, n int) ([]audit.Entry, error)
}

// Server exposes the copilot over HTTP
type Server struct {
	router   chi.Router
	analyzer Analyzer
	audit    AuditLog
	log      *slog.Logger
}

// New creates a new server. auditLog may be nil.
func New(analyzer Analyzer, auditLog AuditLog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		router:   chi.NewRouter(),
		analyzer: analyzer,
		audit:    auditLog,
		log:      logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestID)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.log.Debug("Request", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Duration("duration", time.Since(start)), slog.String("request_id", w.Header().Get("X-Request-ID")))
		})
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Every method reaches the handler, it answers non POST requests itself
	s.router.HandleFunc("/analyze", s.handleAnalyze)
	s.router.HandleFunc("/analyze/", s.handleAnalyze)

	s.router.Get("/answers", s.handleAnswers)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type analyzeRequest struct {
	Query       string  `json:"query"`
	ParentQuery *string `json:"parent_query"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Only POST requests are allowed"})
		return
	}

	var req analyzeRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	q := model.Query{Query: strings.TrimSpace(req.Query)}
	if req.ParentQuery != nil {
		q.ParentQuery = strings.TrimSpace(*req.ParentQuery)
	}

	answer, trace := s.analyzer.AnalyzeWithTrace(r.Context(), q)

	s.log.Info(
		"Analyzed query",
		slog.String("request_id", w.Header().Get("X-Request-ID")),
		slog.String("outcome", string(trace.Outcome)),
		slog.Any("retrieved", trace.Retrieved),
	)

	if s.audit != nil {
		if err := s.audit.Record(r.Context(), audit.NewEntry(q, trace)); err != nil {
			s.log.Error("Failed to record answer", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.writeError(w, http.StatusNotFound, errors.New("audit log is disabled"))
		return
	}

	n := 20
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, errors.New("n must be a positive integer"))
			return
		}
		n = parsed
	}

	entries, err := s.audit.Recent(r.Context(), n)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		s.log.Warn("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
