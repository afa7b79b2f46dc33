// Package http serves the weft admin API: health, metrics, node selection and
// an SSE push hub.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/selection"
	"github.com/go-chi/chi/v5"
)

// Session is the part of weft.Session the admin API drives.
type Session interface {
	Nodes() *selection.Registry
	Register(n *domain.Node) error
	Remove(id string) error
	Select(id string) (*domain.Node, error)
	Selected() (*domain.Node, bool)
	ClearSelection()
	ProcessSelected(ctx context.Context) (*domain.ProcessResult, error)
}

// Server holds the handler dependencies.
type Server struct {
	Session Session
	Hub     *Hub
	Metrics http.Handler
	Version string

	logger *slog.Logger
}

type Option func(*Server)

// WithHub enables GET/POST /events.
func WithHub(h *Hub) Option {
	return func(s *Server) {
		s.Hub = h
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the admin HTTP handler.
func NewHandler(session Session, opts ...Option) http.Handler {
	s := &Server{
		Session: session,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.ListNodes)
		r.Post("/", s.RegisterNode)
		r.Delete("/{id}", s.RemoveNode)
		r.Post("/{id}/select", s.SelectNode)
	})
	r.Route("/selection", func(r chi.Router) {
		r.Get("/", s.GetSelection)
		r.Delete("/", s.ClearSelection)
		r.Post("/process", s.ProcessSelection)
	})

	if s.Hub != nil {
		r.Get("/events", s.SubscribeEvents)
		r.Post("/events", s.PublishEvent)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type nodeView struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Classes    []string       `json:"classes"`
}

func viewOf(n *domain.Node) nodeView {
	return nodeView{ID: n.ID(), Type: n.Type, Parameters: n.Parameters, Classes: n.Classes()}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"app":     "weft-admin",
		"version": strings.TrimSpace(s.Version),
	}
	if s.Hub != nil {
		resp["subscribers"] = s.Hub.Subscribers()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListNodes handles the GET /nodes request.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.Session.Nodes().List()
	out := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, viewOf(n))
	}
	writeJSON(w, http.StatusOK, out)
}

// RegisterNode handles the POST /nodes request.
func (s *Server) RegisterNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID         string         `json:"id"`
		Type       string         `json:"type"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("RegisterNode: invalid request body", "error", err)
		return
	}

	n := domain.NewNode(body.ID, body.Type, body.Parameters)
	if err := s.Session.Register(n); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(n))
}

// RemoveNode handles the DELETE /nodes/{id} request.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Remove(chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectNode handles the POST /nodes/{id}/select request.
func (s *Server) SelectNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.Session.Select(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(n))
}

// GetSelection handles the GET /selection request.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	n, ok := s.Session.Selected()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"node": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"node": viewOf(n)})
}

// ClearSelection handles the DELETE /selection request.
func (s *Server) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s.Session.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// ProcessSelection handles the POST /selection/process request.
func (s *Server) ProcessSelection(w http.ResponseWriter, r *http.Request) {
	res, err := s.Session.ProcessSelected(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PublishEvent handles the POST /events request.
func (s *Server) PublishEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.PushEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.ContainsAny(ev.ID, "\r\n") || strings.ContainsAny(ev.Name, "\r\n") {
		writeError(w, http.StatusBadRequest, "id and event must be single-line")
		return
	}
	if ev.Name == "" {
		ev.Name = domain.EventCompileLine
	}
	n := s.Hub.Broadcast(ev)
	s.logger.Debug("event published", "event", ev.Name, "delivered", n)
	writeJSON(w, http.StatusAccepted, map[string]int{"delivered": n})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Hub.Subscribe()
	defer cancel()
	s.logger.Info("sse client connected", "last_event_id", r.Header.Get("Last-Event-ID"))

	writeEvent(w, domain.PushEvent{Name: "ping", Data: "connected"})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// fail maps an error onto a status code and JSON body.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var de *domain.DispatchError
	switch {
	case errors.Is(err, domain.ErrUnknownElement):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoSelection):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &de) && de.Kind == domain.KindApplication:
		writeError(w, http.StatusUnprocessableEntity, de.Message)
	case errors.As(err, &de):
		s.logger.Error("backend call failed", "kind", de.Kind, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
