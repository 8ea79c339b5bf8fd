package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/nao1215/a11yaudit/internal/browser"
	"github.com/nao1215/a11yaudit/internal/config"
	"github.com/nao1215/a11yaudit/internal/database"
	"github.com/nao1215/a11yaudit/internal/log"
	"github.com/nao1215/a11yaudit/internal/model"
	"github.com/nao1215/a11yaudit/internal/pipeline"
	"github.com/nao1215/a11yaudit/internal/report"
)

// defaultMaxBodySize caps audit request bodies.
const defaultMaxBodySize = 1 << 20

// Auditor runs one audit.
type Auditor interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Output, error)
}

// History reads stored audits.
type History interface {
	AuditByID(ctx context.Context, id string) (*model.AuditReport, error)
	AuditHistory(ctx context.Context, site string) ([]database.AuditMetadata, error)
	ListSites(ctx context.Context) ([]string, error)
}

// Server serves the audit API.
type Server struct {
	auditor     Auditor
	history     History
	deadline    time.Duration
	maxBodySize int64
	version     string
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory enables the history routes.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithAuditDeadline bounds each audit request.
func WithAuditDeadline(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// WithMaxBodySize caps request bodies.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// WithVersion sets the version reported by the health and export routes.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a Server.
func New(auditor Auditor, opts ...Option) *Server {
	s := &Server{
		auditor:     auditor,
		deadline:    config.DefaultAuditDeadline,
		maxBodySize: defaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/audits", s.handleAudit)
		if s.history != nil {
			r.Get("/audits/{id}", s.handleGetAudit)
			r.Get("/sites", s.handleListSites)
			r.Get("/sites/{site}/audits", s.handleSiteHistory)
		}
	})

	return r
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes an error reply. Messages are redacted because browser
// errors can echo the endpoint URL with its token.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: log.RedactURLSecrets(err.Error())})
}

// statusFor maps an audit error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNoValidURLs):
		return http.StatusBadRequest
	case errors.Is(err, browser.ErrBrowserNotConfigured),
		errors.Is(err, browser.ErrInvalidEndpoint),
		errors.Is(err, browser.ErrBrowserUnreachable),
		errors.Is(err, browser.ErrEmptyScript):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var body AuditRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, s.maxBodySize), &body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errInvalidJSON)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.deadline)
	defer cancel()

	out, err := s.auditor.Run(ctx, body.toRequest())
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("audit request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"status", status,
			"error", err,
		)
		s.writeError(w, r, status, err)
		return
	}

	render.JSON(w, r, out)
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	rep, err := s.history.AuditByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if rep == nil {
		s.writeError(w, r, http.StatusNotFound, errAuditNotFound)
		return
	}
	render.JSON(w, r, report.NewJSONReport(rep, s.version))
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.history.ListSites(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if sites == nil {
		sites = []string{}
	}
	render.JSON(w, r, map[string][]string{"sites": sites})
}

func (s *Server) handleSiteHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.history.AuditHistory(r.Context(), chi.URLParam(r, "site"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []database.AuditMetadata{}
	}
	render.JSON(w, r, map[string][]database.AuditMetadata{"audits": history})
}
