package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"aggstat/adapters/tsv"
	"aggstat/internal"
	"aggstat/internal/agg"
	"aggstat/internal/config"
	apperrors "aggstat/internal/errors"
	"aggstat/ports"
)

// Server exposes the aggregation engine over HTTP. One POST runs a job from
// an uploaded settings document and data table; runs are archived when an
// archive is configured.
type Server struct {
	router  *chi.Mux
	logger  *internal.Logger
	archive ports.RunArchive
}

// NewServer creates the HTTP server
func NewServer(logger *internal.Logger, archive ports.RunArchive) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger,
		archive: archive,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/aggregate", s.handleAggregate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
}

// aggregateRequest carries one job: the YAML settings document and the
// tab-separated input table.
type aggregateRequest struct {
	Settings string `json:"settings"`
	Input    string `json:"input"`
}

// aggregateResponse returns the output table; missing cells are null.
type aggregateResponse struct {
	RunID   string      `json:"run_id"`
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.InvalidInput("request body must be JSON"))
		return
	}

	settings, err := config.ParseSettings([]byte(req.Settings))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	input, err := tsv.NewReader().Read(strings.NewReader(req.Input))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	started := time.Now()
	output, err := agg.New(settings, s.logger).Run(input)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	runID := uuid.NewString()
	if s.archive != nil {
		record := ports.RunRecord{
			ID:         runID,
			LineType:   settings.LineType,
			Statistics: settings.Statistics,
			InputRows:  input.Len(),
			OutputRows: output.Len(),
			StartedAt:  started,
			FinishedAt: time.Now(),
		}
		if err := s.archive.SaveRun(r.Context(), record, output); err != nil {
			// Archiving is best effort; the computed result still ships.
			s.logger.Error("archiving run %s: %v", runID, err)
		}
	}

	resp := aggregateResponse{RunID: runID, Columns: output.Columns()}
	for i := 0; i < output.Len(); i++ {
		row := make([]*string, len(resp.Columns))
		for j, v := range output.Row(i) {
			if !v.Missing() {
				text := v.Text()
				row[j] = &text
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, apperrors.New(apperrors.CodeDatabaseError, "run archive not configured"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.archive.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, apperrors.New(apperrors.CodeDatabaseError, "run archive not configured"))
		return
	}
	record, err := s.archive.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{
		"code":  apperrors.GetCode(err),
		"error": err.Error(),
	})
}
