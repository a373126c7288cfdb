// Package api exposes the composition pipeline over HTTP.
//
// The server wraps a [pipeline.Runner] and a [store.Store]: compositions can
// be generated or uploaded, persisted, listed and re-rendered in any
// supported format.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tally/pkg/composition"
	"github.com/matzehuels/tally/pkg/pipeline"
	"github.com/matzehuels/tally/pkg/store"
)

// Server handles HTTP requests for the composition API.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults Defaults
}

// Defaults supplies fallback generation and render settings, typically from
// the server config. They apply only where a request omits the
// corresponding field; zero fields defer to the pipeline defaults.
type Defaults struct {
	MinDepth  int
	MaxDepth  int
	MaxArity  int
	ProbEmpty float64

	Format   string
	Scale    float64
	Detailed bool
}

// ServerOption configures a server at construction time.
type ServerOption func(*Server)

// WithDefaults sets the fallback generation and render settings.
func WithDefaults(d Defaults) ServerOption {
	return func(s *Server) { s.defaults = d }
}

// NewServer creates a server. A nil store disables persistence endpoints
// with 503 responses; a nil logger falls back to the default.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, store: st, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the chi router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/random", s.handleRandom)
	r.Post("/render", s.handleRender)

	r.Route("/compositions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Delete("/{id}", s.handleDelete)
		r.Get("/{id}.{format}", s.handleGetRendered)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// randomRequest is the body of POST /random.
type randomRequest struct {
	Seed      uint64  `json:"seed,omitempty"`
	MinDepth  int     `json:"min_depth,omitempty"`
	MaxDepth  int     `json:"max_depth,omitempty"`
	MaxArity  int     `json:"max_arity,omitempty"`
	ProbEmpty float64 `json:"prob_empty,omitempty"`
	Save      bool    `json:"save,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// compositionResponse describes a composition in API responses.
type compositionResponse struct {
	ID       string             `json:"id,omitempty"`
	Name     string             `json:"name,omitempty"`
	Record   composition.Record `json:"record"`
	Printed  string             `json:"printed"`
	Depth    int                `json:"depth"`
	MaxArity int                `json:"max_arity"`
	Tiles    int                `json:"tiles"`
	Seed     uint64             `json:"seed,omitempty"`
}

// handleRandom generates a composition from a seed, optionally persisting it.
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	var req randomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := pipeline.Options{
		Random:    true,
		Seed:      req.Seed,
		MinDepth:  fallbackInt(req.MinDepth, s.defaults.MinDepth),
		MaxDepth:  fallbackInt(req.MaxDepth, s.defaults.MaxDepth),
		MaxArity:  fallbackInt(req.MaxArity, s.defaults.MaxArity),
		ProbEmpty: fallbackFloat(req.ProbEmpty, s.defaults.ProbEmpty),
		Logger:    s.logger,
	}
	c, err := s.runner.Compose(r.Context(), opts)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	resp := compositionResponse{
		Record:   c.Record(),
		Printed:  c.String(),
		Depth:    c.Depth(),
		MaxArity: c.MaxArity(),
		Tiles:    c.Tiles(),
		Seed:     opts.Seed,
	}

	if req.Save {
		if s.store == nil {
			writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
			return
		}
		doc := store.NewDocument(c, req.Name)
		if err := s.store.Save(r.Context(), doc); err != nil {
			s.logger.Error("saving composition", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save composition")
			return
		}
		resp.ID = doc.ID
		resp.Name = doc.Name
	}

	writeJSON(w, http.StatusOK, resp)
}

// renderRequest is the body of POST /render.
type renderRequest struct {
	Record   composition.Record `json:"record"`
	Format   string             `json:"format,omitempty"`
	Scale    float64            `json:"scale,omitempty"`
	Detailed bool               `json:"detailed,omitempty"`
	Diagram  bool               `json:"diagram,omitempty"`
}

// handleRender renders an uploaded record without persisting it.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	format := req.Format
	if format == "" {
		format = s.defaults.Format
	}
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := json.Marshal(req.Record)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record")
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Record:   record,
		Scale:    fallbackFloat(req.Scale, s.defaults.Scale),
		Detailed: req.Detailed,
		Diagram:  req.Diagram,
		Formats:  []string{format},
		Logger:   s.logger,
	})
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// createRequest is the body of POST /compositions.
type createRequest struct {
	Record composition.Record `json:"record"`
	Name   string             `json:"name,omitempty"`
}

// handleCreate canonicalizes an uploaded record and persists it.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := composition.FromRecord(req.Record)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := store.NewDocument(c, req.Name)
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.logger.Error("saving composition", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save composition")
		return
	}

	writeJSON(w, http.StatusCreated, docResponse(doc))
}

// handleList returns stored compositions, newest first.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	docs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing compositions", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list compositions")
		return
	}

	resp := make([]compositionResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, docResponse(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGet returns a stored composition by ID.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, docResponse(doc))
}

// handleDelete removes a stored composition.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	err := s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "composition not found")
		return
	}
	if err != nil {
		s.logger.Error("deleting composition", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete composition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetRendered renders a stored composition in the requested format,
// addressed as /compositions/{id}.{format}.
func (s *Server) handleGetRendered(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := json.Marshal(doc.Record)
	if err != nil {
		s.logger.Error("marshaling record", "id", doc.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to render composition")
		return
	}

	opts := pipeline.Options{
		Record:   record,
		Formats:  []string{format},
		Diagram:  r.URL.Query().Get("view") == "diagram",
		Detailed: s.defaults.Detailed,
		Scale:    s.defaults.Scale,
		Logger:   s.logger,
	}
	if raw := r.URL.Query().Get("detailed"); raw != "" {
		opts.Detailed = raw == "true"
	}
	if raw := r.URL.Query().Get("scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 {
			writeError(w, http.StatusBadRequest, "invalid scale")
			return
		}
		opts.Scale = scale
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// loadDocument fetches the document addressed by the id URL param, writing
// the error response itself when the lookup fails.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return nil, false
	}

	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "composition not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("loading composition", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load composition")
		return nil, false
	}
	return doc, true
}

// writePipelineError maps pipeline errors to HTTP status codes.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, composition.ErrMalformedRecord),
		errors.Is(err, composition.ErrInvalidShape):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, composition.ErrGenerationExhausted):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("pipeline failed", "err", err)
		writeError(w, http.StatusInternalServerError, "pipeline failed")
	}
}

// logRequests is a minimal structured request logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func docResponse(doc *store.Document) compositionResponse {
	return compositionResponse{
		ID:       doc.ID,
		Name:     doc.Name,
		Record:   doc.Record,
		Printed:  doc.Printed,
		Depth:    doc.Depth,
		MaxArity: doc.MaxArity,
		Tiles:    doc.Tiles,
	}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func fallbackInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func fallbackFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
