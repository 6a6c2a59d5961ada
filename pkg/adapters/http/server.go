// Package http exposes a controller registry over HTTP with chi.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/nody"
	"github.com/aretw0/nody/internal/logging"
	presentation "github.com/aretw0/nody/internal/presentation/graph"
	"github.com/aretw0/nody/pkg/controller"
	"github.com/aretw0/nody/pkg/domain"
	"github.com/aretw0/nody/pkg/graph"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the controllers of a registry.
type Server struct {
	Registry *controller.Registry
	Streams  *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics exposes gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreams shares a StreamManager whose Hooks were attached to the graphs.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a server over registry.
func NewServer(registry *controller.Registry, opts ...Option) *Server {
	s := &Server{
		Registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates a new HTTP handler for the registry.
func NewHandler(registry *controller.Registry, opts ...Option) http.Handler {
	return NewServer(registry, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/controllers", func(r chi.Router) {
		r.Get("/", s.ListControllers)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetController)
			r.Post("/goto", s.GoTo)
			r.Post("/tick", s.Tick)
			r.Post("/advance", s.Advance)
			r.Get("/graph", s.GetGraph)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GoToRequest selects the node to activate. ID wins over Name.
type GoToRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TickRequest carries the frame delta in milliseconds. Zero means 0s.
type TickRequest struct {
	DeltaMS int64 `json:"dt_ms,omitempty"`
	// Fixed selects FixedUpdate instead of a full tick.
	Fixed bool `json:"fixed,omitempty"`
}

// AdvanceRequest selects the output to continue through.
type AdvanceRequest struct {
	Output int `json:"output"`
}

// ListControllers handles GET /controllers.
func (s *Server) ListControllers(w http.ResponseWriter, r *http.Request) {
	list := s.Registry.List()
	out := make([]controller.Status, 0, len(list))
	for _, c := range list {
		out = append(out, c.Status())
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetController handles GET /controllers/{name}.
func (s *Server) GetController(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, c.Status())
}

// GoTo handles POST /controllers/{name}/goto.
func (s *Server) GoTo(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body GoToRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("GoTo: Invalid request body", "error", err)
		return
	}

	var err error
	switch {
	case body.ID != "":
		err = c.GoToNodeByID(body.ID)
	case body.Name != "":
		err = c.GoToNodeByName(body.Name)
	default:
		http.Error(w, "id or name is required", http.StatusBadRequest)
		return
	}
	s.respond(w, c, "GoTo", err)
}

// Tick handles POST /controllers/{name}/tick. The body is optional.
func (s *Server) Tick(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body TickRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("Tick: Invalid request body", "error", err)
			return
		}
	}

	dt := time.Duration(body.DeltaMS) * time.Millisecond
	var err error
	if body.Fixed {
		err = c.FixedUpdate(dt)
	} else {
		err = c.Tick(dt)
	}
	s.respond(w, c, "Tick", err)
}

// Advance handles POST /controllers/{name}/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body AdvanceRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("Advance: Invalid request body", "error", err)
			return
		}
	}
	s.respond(w, c, "Advance", c.Advance(body.Output))
}

// GetGraph handles GET /controllers/{name}/graph, returning Mermaid with the
// live path highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var out string
	c.Inspect(func(g *graph.Graph) {
		if g == nil {
			return
		}
		out = presentation.GenerateMermaid(g, presentation.OverlayFromGraph(g))
	})
	if out == "" {
		http.Error(w, "controller has no graph", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, out)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "nody-http",
		"version": strings.TrimSpace(nody.Version),
	})
}

// SubscribeEvents handles GET /controllers/{name}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(c.Name())
	defer cancel()

	s.logger.Info("SSE: Subscribing to controller events", "controller", c.Name())
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "controller", c.Name())
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*controller.Controller, bool) {
	name := chi.URLParam(r, "name")
	c, ok := s.Registry.Lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("controller %q not found", name), http.StatusNotFound)
		return nil, false
	}
	return c, true
}

// respond writes the controller status, or maps err to an HTTP status.
func (s *Server) respond(w http.ResponseWriter, c *controller.Controller, op string, err error) {
	if err != nil {
		code := statusFor(err)
		if code >= 500 {
			s.logger.Error(op+" failed", "controller", c.Name(), "error", err)
		}
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), code)
		return
	}
	s.writeJSON(w, http.StatusOK, c.Status())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrSocketNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNodeNotInGraph):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrControllerDisabled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTraversalLoop):
		return http.StatusLoopDetected
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
