// Package api implements the HTTP service that gives batch systems and
// CI pipelines a second entry point into the alignment pipeline besides
// the CLI: POST /runs triggers an alignment against server-accessible
// input paths, GET /runs/{id} polls its status and report. Routing is
// go-chi/chi, matching the teacher's own choice of router for its
// (never-built) API surface.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"structuralign/pkg/config"
	"structuralign/pkg/pipeline"
	"structuralign/pkg/runstore"
)

// Server holds the dependencies every handler needs.
type Server struct {
	Runner *pipeline.Runner
	Store  runstore.Store
	Logger *log.Logger
}

// NewServer builds a Server. runner and store must be non-nil; logger
// defaults to log.Default() if nil.
func NewServer(runner *pipeline.Runner, store runstore.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Store: store, Logger: logger}
}

// Router builds the HTTP route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createRunRequest is the POST /runs body. Inputs are paths on storage
// the server can already reach (a shared volume or object-store mount),
// not uploaded bytes — the same assumption spec.md's CLI makes about
// --input-model/--input-db.
type createRunRequest struct {
	InputModel          string  `json:"input_model,omitempty"`
	InputDB             string  `json:"input_db,omitempty"`
	ReferenceModel      string  `json:"reference_model,omitempty"`
	Output              string  `json:"output,omitempty"`
	MaxSnapDistance     float64 `json:"max_snap_distance,omitempty"`
	OutlierSnapDistance float64 `json:"outlier_snap_distance,omitempty"`
	MinFloors           int     `json:"min_floors,omitempty"`
	RoundingPrecision   float64 `json:"rounding_precision,omitempty"`
}

type createRunResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	if req.InputModel == "" && req.InputDB == "" {
		writeError(w, http.StatusBadRequest, "one of input_model or input_db is required")
		return
	}
	if req.InputModel != "" && req.InputDB != "" {
		writeError(w, http.StatusBadRequest, "input_model and input_db are mutually exclusive")
		return
	}

	id, err := runstore.NewID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "generate run id: "+err.Error())
		return
	}

	pOpts := buildOptions(req)
	run := &runstore.Run{
		ID:        id,
		InputPath: pOpts.InputPath,
		Config:    pOpts.Config,
		StartedAt: time.Now(),
		Status:    runstore.StatusRunning,
	}
	if err := s.Store.Save(r.Context(), run); err != nil {
		writeError(w, http.StatusInternalServerError, "persist run: "+err.Error())
		return
	}

	go s.execute(id, pOpts)

	writeJSON(w, http.StatusAccepted, createRunResponse{ID: id, Status: string(runstore.StatusRunning)})
}

// execute runs the pipeline in the background and records its outcome.
// It uses its own context rather than the triggering request's, since
// the request has already returned by the time this runs.
func (s *Server) execute(id string, pOpts pipeline.Options) {
	ctx := context.Background()
	start := time.Now()
	pOpts.Logger = s.Logger

	result, err := s.Runner.Execute(ctx, pOpts)
	duration := time.Since(start)

	run, getErr := s.Store.Get(ctx, id)
	if getErr != nil {
		s.Logger.Error("run vanished from store before completion", "id", id, "error", getErr)
		return
	}
	run.Duration = duration

	if err != nil {
		run.Status = runstore.StatusFailed
		run.Error = err.Error()
		s.Logger.Error("run failed", "id", id, "error", err)
	} else {
		run.Report = result.Report
		if result.Validation.Passed {
			run.Status = runstore.StatusCompleted
		} else {
			run.Status = runstore.StatusFailed
			run.Error = "post-alignment validation failed"
		}
	}

	if saveErr := s.Store.Save(ctx, run); saveErr != nil {
		s.Logger.Error("failed to persist run outcome", "id", id, "error", saveErr)
	}
}

func buildOptions(req createRunRequest) pipeline.Options {
	cfg := config.Default()
	if req.MaxSnapDistance > 0 {
		cfg.MaxSnapDistance = req.MaxSnapDistance
	}
	if req.OutlierSnapDistance > 0 {
		cfg.OutlierSnapDistance = req.OutlierSnapDistance
	}
	if req.MinFloors > 0 {
		cfg.MinFloors = req.MinFloors
	}
	if req.RoundingPrecision > 0 {
		cfg.RoundingPrecision = req.RoundingPrecision
	}

	opts := pipeline.Options{Config: cfg, OutputPath: req.Output}
	if req.InputModel != "" {
		opts.InputPath, opts.InputFormat = req.InputModel, pipeline.FormatModel
	} else {
		opts.InputPath, opts.InputFormat = req.InputDB, pipeline.FormatDB
	}
	if req.ReferenceModel != "" {
		opts.ReferencePath, opts.ReferenceFormat = req.ReferenceModel, pipeline.FormatModel
	}
	return opts
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.Store.Get(r.Context(), id)
	if err == runstore.ErrNotFound {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get run: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			limit = n
		}
	}
	runs, err := s.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list runs: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
