package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/routechain"
	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/adapters/redis"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/ports"
	"github.com/aretw0/routechain/pkg/router"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// JournalReader reads back journaled entries.
type JournalReader interface {
	Entries(ctx context.Context, count int64) ([]redis.Entry, error)
}

// StateResponse is the body of GET /state and of successful navigations.
type StateResponse struct {
	Route  string   `json:"route"`
	URL    string   `json:"url"`
	State  string   `json:"state"`
	Active []string `json:"active"`
}

// VisitRequest is the body of POST /visit.
type VisitRequest struct {
	URL  string `json:"url"`
	Wait bool   `json:"wait"`
}

// Server serves the HTTP control surface.
type Server struct {
	Navigator ports.Navigator
	Sequencer ports.Sequencer
	Streams   *StreamManager

	graph    func() string
	gatherer prometheus.Gatherer
	journal  JournalReader
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGraph serves GET /graph from fn.
func WithGraph(fn func() string) Option {
	return func(s *Server) { s.graph = fn }
}

// WithMetrics serves GET /metrics from g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithJournal serves GET /journal from j.
func WithJournal(j JournalReader) Option {
	return func(s *Server) { s.journal = j }
}

// WithStreams shares sm with the sequencer hooks that feed it.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.Streams = sm
		}
	}
}

// WithLogger sets the request logger. The stream manager logs through it too.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server for a navigator and its sequencer.
func NewServer(nav ports.Navigator, seq ports.Sequencer, opts ...Option) *Server {
	s := &Server{
		Navigator: nav,
		Sequencer: seq,
		Streams:   NewStreamManager(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// Options apply in any order, so the manager gets the logger last.
	s.Streams.setLogger(s.logger)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/visit", s.Visit)
	r.Get("/state", s.GetState)
	r.Post("/wait", s.Wait)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.graph != nil {
		r.Get("/graph", s.GetGraph)
	}
	if s.journal != nil {
		r.Get("/journal", s.GetJournal)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
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

// Visit handles the POST /visit request.
func (s *Server) Visit(w http.ResponseWriter, r *http.Request) {
	var body VisitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Visit: invalid request body", "error", err)
		return
	}

	if err := s.Navigator.Visit(r.Context(), body.URL); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, router.ErrUnknownRoute):
			status = http.StatusNotFound
		case errors.Is(err, router.ErrTransitionAborted), errors.Is(err, router.ErrRedirectLoop):
			status = http.StatusConflict
		}
		http.Error(w, fmt.Sprintf("Visit error: %v", err), status)
		s.logger.Warn("Visit failed", "url", body.URL, "error", err)
		return
	}

	if body.Wait {
		if err := s.Sequencer.Wait(r.Context()); err != nil {
			http.Error(w, fmt.Sprintf("Wait error: %v", err), http.StatusGatewayTimeout)
			return
		}
	}
	s.writeJSON(w, s.state())
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.state())
}

// Wait handles the POST /wait request.
func (s *Server) Wait(w http.ResponseWriter, r *http.Request) {
	if err := s.Sequencer.Wait(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Wait error: %v", err), http.StatusGatewayTimeout)
		return
	}
	s.writeJSON(w, s.state())
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.graph()))
}

// GetJournal handles the GET /journal request.
func (s *Server) GetJournal(w http.ResponseWriter, r *http.Request) {
	count := int64(50)
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}
	entries, err := s.journal.Entries(r.Context(), count)
	if err != nil {
		http.Error(w, fmt.Sprintf("Journal error: %v", err), http.StatusBadGateway)
		s.logger.Error("Journal read failed", "error", err)
		return
	}
	s.writeJSON(w, entries)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "routechain-http",
		"version": strings.TrimSpace(routechain.Version),
	})
}

func (s *Server) state() StateResponse {
	return StateResponse{
		Route:  s.Navigator.Current(),
		URL:    s.Navigator.CurrentURL(),
		State:  s.Sequencer.State().String(),
		Active: s.Sequencer.ActivePath().Names(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message")
		}
	}
}

// LifecycleHooks returns hooks that broadcast finished sequences to /events subscribers.
func (sm *StreamManager) LifecycleHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequenceEnd: func(_ context.Context, e *domain.SequenceEvent) {
			if bytes, err := json.Marshal(e); err == nil {
				sm.Broadcast(string(bytes))
			}
		},
	}
}

func (sm *StreamManager) setLogger(logger *slog.Logger) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.logger = logger
}

// Subscribers returns the number of open streams.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// SubscribeEvents handles the GET /events request (SSE).
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

	fmt.Fprintf(w, "event: ping\ndata: %s\n\n", s.Navigator.Current())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "event: sequence\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
