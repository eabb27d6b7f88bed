package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/mbt/pkg/domain"
	"github.com/aretw0/mbt/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StepResponse is the body returned by POST /step/next.
type StepResponse struct {
	Navigate   string  `json:"navigate"`
	Verify     string  `json:"verify"`
	State      string  `json:"state"`
	Fulfilment float64 `json:"fulfilment"`
}

// Server exposes one generation session over HTTP. Requests are serialized because
// a session is not safe for concurrent use.
type Server struct {
	Session ports.Session
	Streams *StreamManager

	mu       sync.Mutex
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts GET /metrics serving the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a server for session.
func NewServer(session ports.Session, opts ...Option) *Server {
	s := &Server{
		Session: session,
		Streams: NewStreamManager(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for session.
func NewHandler(session ports.Session, opts ...Option) http.Handler {
	return NewServer(session, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/step/has-next", s.HasNext)
	r.Post("/step/next", s.Next)
	r.Post("/backtrack", s.Backtrack)
	r.Get("/state", s.GetState)
	r.Get("/data/{name}", s.GetData)
	r.Get("/statistics", s.GetStatistics)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownVariable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotExtended):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDeadEnd), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Warn(op+" rejected", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HasNext handles GET /step/has-next.
func (s *Server) HasNext(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok, err := s.Session.HasNextStep()
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "HasNext", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"has_next": ok})
}

// Next handles POST /step/next.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	step, err := s.Session.NextStep()
	var resp StepResponse
	if err == nil {
		resp = StepResponse{
			Navigate:   step.Navigate,
			Verify:     step.Verify,
			State:      s.Session.CurrentState(),
			Fulfilment: s.Session.Fulfilment(),
		}
	}
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "Next", err)
		return
	}

	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(string(payload))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Backtrack handles POST /backtrack.
func (s *Server) Backtrack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.Session.Backtrack()
	state := s.Session.CurrentState()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"backtracked": ok, "state": state})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.Session.CurrentState()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

// GetData handles GET /data/{name}.
func (s *Server) GetData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.Lock()
	value, err := s.Session.DataValue(name)
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "DataValue", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"name": name, "value": value})
}

// GetStatistics handles GET /statistics?format=compact|default|verbose.
func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request) {
	var report func() string
	switch format := r.URL.Query().Get("format"); format {
	case "compact":
		report = s.Session.StatisticsCompact
	case "verbose":
		report = s.Session.StatisticsVerbose
	case "", "default":
		report = s.Session.StatisticsString
	default:
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	text := report()
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, text)
}

// SubscribeEvents handles GET /events, a server-sent event stream of generated steps.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := s.Streams.Subscribe()
	defer unsubscribe()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "event: step\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
