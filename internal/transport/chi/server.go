package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/query"
	"github.com/kailas-cloud/docqa/internal/logger"
	healthuc "github.com/kailas-cloud/docqa/internal/usecase/health"
)

// DefaultMaxUploadBytes caps multipart uploads when Options.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 32 << 20

// Options tunes the HTTP surface.
type Options struct {
	Passphrase           string // empty disables the passphrase gate
	MaxUploadBytes       int64
	ExposeInternalErrors bool
}

// Server serves the query, upload and history API.
type Server struct {
	ask           Asker
	ingest        Uploader
	history       HistoryReader
	health        HealthReporter
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ask Asker,
	ingest Uploader,
	history HistoryReader,
	health HealthReporter,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ask:     ask,
		ingest:  ingest,
		history: history,
		health:  health,
		opts:    opts,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMissingQuery, http.StatusBadRequest),
		parameterErrorHandler,
		sentinelHandler(domain.ErrInvalidFile, http.StatusBadRequest),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized),
		sentinelHandler(domain.ErrRetrieval, http.StatusInternalServerError),
		sentinelHandler(domain.ErrIngestion, http.StatusInternalServerError),
	}
	return s
}

// Register mounts the routes on r. Upload and query sit behind the passphrase gate.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Index)
	r.Get("/history", s.History)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(PassphraseMiddleware(s.opts.Passphrase))
		r.Post("/upload", s.Upload)
		r.Post("/query", s.Query)
	})
}

// Index handles GET /.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var body queryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			s.handleDomainError(w, r, domain.ErrMissingQuery)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	confidence, err := parseThreshold(body.ConfidenceThreshold, "Confidence threshold")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	relevance, err := parseThreshold(body.RelevanceThreshold, "Relevance threshold")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	req, err := query.New(body.Query, body.StartDate, body.EndDate, confidence, relevance)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.ask.Ask(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Query:             res.Query,
		Answer:            res.Answer,
		RelevantDocuments: summariesToJSON(res.Documents),
		SearchHistory:     nonNilRecords(res.History),
	})
}

// Upload handles POST /upload (multipart field "file").
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File exceeds upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer func() { _ = file.Close() }()

	receipt, err := s.ingest.Upload(r.Context(), header.Filename, file)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:    "File uploaded successfully",
		DocumentID: receipt.DocumentID,
		Status:     receipt.Status,
	})
}

// History handles GET /history?limit=n.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format for parameter limit")
		return
	}
	if limit < 0 {
		writeError(w, http.StatusUnprocessableEntity, "limit must not be negative")
		return
	}

	writeJSON(w, http.StatusOK, nonNilRecords(s.history.Last(limit)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("request failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	msg := "internal error"
	if s.opts.ExposeInternalErrors {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg)
}
