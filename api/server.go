package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/service"
	"github.com/wricardo/circuit-tracer/transport/websocket"
)

// maxLayoutBytes caps the body of an inline trace request
const maxLayoutBytes = 1 << 20

// Server represents the REST API server
type Server struct {
	service service.TraceService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server. hub may be nil to disable live updates.
func NewServer(traceService service.TraceService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: traceService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Boards
	api.HandleFunc("/boards", s.handleListBoards).Methods("GET")
	api.HandleFunc("/boards/{name}", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/boards/{name}/trace", s.handleTraceBoard).Methods("POST")

	// Inline layouts
	api.HandleFunc("/trace", s.handleTraceLayout).Methods("POST")

	// Runs
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error": message,
		"code":  status,
	})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrFormat),
		errors.Is(err, config.ErrInvalidName),
		errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrBoardNotFound),
		errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}
	respondError(w, status, err.Error())
}

// Board Handlers

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.service.ListBoards(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(boards),
		"boards": boards,
	})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	detail, err := s.service.GetBoard(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleTraceBoard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		Storage string `json:"storage,omitempty"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	if storage := r.URL.Query().Get("storage"); storage != "" && req.Storage == "" {
		req.Storage = storage
	}

	summary, err := s.service.TraceBoard(r.Context(), name, req.Storage)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.broadcast(summary)
	respondJSON(w, http.StatusOK, summary)
}

// Trace Handlers

func (s *Server) handleTraceLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Layout  string `json:"layout"`
		Storage string `json:"storage,omitempty"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLayoutBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Layout == "" {
		respondError(w, http.StatusBadRequest, "layout is required")
		return
	}

	summary, err := s.service.TraceLayout(r.Context(), req.Layout, req.Storage)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.broadcast(summary)
	respondJSON(w, http.StatusOK, summary)
}

// Run Handlers

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	total := len(runs)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(runs) {
			runs = runs[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"total": total,
		"runs":  runs,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.service.DeleteRun(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s deleted", id),
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	name := r.URL.Query().Get("board")
	if name == "" {
		http.Error(w, "board parameter required", http.StatusBadRequest)
		return
	}

	// Inline layouts have no catalog entry
	if name != service.LayoutBoardName {
		if _, err := s.service.GetBoard(r.Context(), name); err != nil {
			http.Error(w, "Invalid board", statusFor(err))
			return
		}
	}

	s.hub.ServeWS(w, r, name)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) broadcast(summary *service.TraceSummary) {
	if s.hub != nil {
		s.hub.BroadcastResult(summary.Board, summary)
	}
}

// decodeOptionalBody decodes a JSON body when one is present
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusRecorder captures the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs every API request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wrapping the writer would hide http.Hijacker from the upgrader
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		began := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(began)))
	})
}
