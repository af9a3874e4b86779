// Package server exposes the planner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pdrpinto/coverage"
)

const (
	defaultSteps    = 7
	defaultDeadline = 5 * time.Second
	maxDeadline     = time.Minute
	maxTickPause    = maxDeadline
	maxSteps        = 100_000

	defaultMaxSessions = 1024
	defaultSessionTTL  = 30 * time.Minute
)

// planRequest configures a run. Missing fields fall back to the planner
// defaults; a missing grid uses coverage.DefaultGrid.
type planRequest struct {
	Grid        [][]int            `json:"grid,omitempty"`
	Steps       *int               `json:"steps,omitempty"`
	DeadlineMS  int64              `json:"deadline_ms,omitempty"`
	Start       *coverage.Position `json:"start,omitempty"`
	Trail       *int               `json:"trail,omitempty"`
	TickPauseMS int64              `json:"tick_pause_ms,omitempty"`
	Explore     *float64           `json:"explore,omitempty"`
	Seed        *int64             `json:"seed,omitempty"`
}

type planResponse struct {
	coverage.Result
	Grid [][]int `json:"grid"`
}

type sessionResponse struct {
	ID       string            `json:"id"`
	Rows     int               `json:"rows"`
	Cols     int               `json:"cols"`
	Start    coverage.Position `json:"start"`
	Position coverage.Position `json:"position"`
	Steps    int               `json:"steps"`
	Cost     int               `json:"cost"`
	Grid     [][]int           `json:"grid"`
}

type session struct {
	mu      sync.Mutex
	stepper *coverage.Stepper

	// lastUsed is guarded by Server.mu.
	lastUsed time.Time
}

// Server holds stepper sessions for interactive clients. Sessions idle for
// longer than the session TTL are dropped, and once the session cap is
// reached the least recently used session makes room for a new one.
type Server struct {
	logger *slog.Logger
	hooks  coverage.Hooks

	maxSessions int
	sessionTTL  time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	random   *rand.Rand
}

// New creates a Server. hooks are attached to every run and session.
func New(logger *slog.Logger, hooks coverage.Hooks) *Server {
	return &Server{
		logger:      logger,
		hooks:       hooks,
		maxSessions: defaultMaxSessions,
		sessionTTL:  defaultSessionTTL,
		now:         time.Now,
		sessions:    make(map[string]*session),
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Handler returns the HTTP routes. metrics, when non-nil, is mounted at /metrics.
func (s *Server) Handler(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Post("/plan", s.handlePlan)
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{id}", s.handleGetSession)
	r.Post("/sessions/{id}/step", s.handleStep)
	r.Delete("/sessions/{id}", s.handleDeleteSession)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var request planRequest
	if err := decodeRequest(r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	grid, start, options, err := s.prepare(request)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	steps := defaultSteps
	if request.Steps != nil {
		steps = *request.Steps
	}
	if steps > maxSteps {
		http.Error(w, fmt.Sprintf("steps must not exceed %d", maxSteps), http.StatusBadRequest)
		return
	}
	deadline := defaultDeadline
	if request.DeadlineMS > 0 {
		deadline = min(time.Duration(request.DeadlineMS)*time.Millisecond, maxDeadline)
	}

	result, err := coverage.RunWithDeadline(r.Context(), grid, steps, start, deadline, options...)
	switch {
	case errors.Is(err, coverage.ErrNoResult):
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Result: result, Grid: result.Grid.Weights()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request planRequest
	if err := decodeRequest(r, &request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	grid, start, options, err := s.prepare(request)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stepper, err := coverage.NewStepper(grid, start, options...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	entry := &session{stepper: stepper, lastUsed: s.now()}
	s.evictLocked(entry.lastUsed)
	s.sessions[id] = entry
	s.mu.Unlock()

	s.logger.Info("session created", "session_id", id, "rows", grid.Rows(), "cols", grid.Cols(), "start", start)
	writeJSON(w, http.StatusCreated, describe(id, entry))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := s.lookup(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, describe(id, entry))
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	entry.mu.Lock()
	snapshot, err := entry.stepper.Step(r.Context())
	entry.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(entry.lastUsed) > s.sessionTTL {
		delete(s.sessions, id)
		s.logger.Debug("session expired", "session_id", id)
		return nil, false
	}
	entry.lastUsed = now
	return entry, true
}

// evictLocked drops expired sessions and, when the map is still full, the
// least recently used one. s.mu must be held.
func (s *Server) evictLocked(now time.Time) {
	oldestID := ""
	var oldest time.Time
	for id, entry := range s.sessions {
		if now.Sub(entry.lastUsed) > s.sessionTTL {
			delete(s.sessions, id)
			s.logger.Debug("session expired", "session_id", id)
			continue
		}
		if oldestID == "" || entry.lastUsed.Before(oldest) {
			oldestID, oldest = id, entry.lastUsed
		}
	}
	if len(s.sessions) >= s.maxSessions && oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.Info("session evicted", "session_id", oldestID, "idle", now.Sub(oldest))
	}
}

// prepare turns a request into planner inputs. A missing start is drawn at
// random.
func (s *Server) prepare(request planRequest) (*coverage.Grid, coverage.Position, []coverage.Option, error) {
	if request.TickPauseMS < 0 || request.TickPauseMS > maxTickPause.Milliseconds() {
		return nil, coverage.Position{}, nil, fmt.Errorf("tick_pause_ms must be between 0 and %d", maxTickPause.Milliseconds())
	}

	grid := coverage.DefaultGrid()
	if len(request.Grid) > 0 {
		var err error
		if grid, err = coverage.NewGrid(request.Grid); err != nil {
			return nil, coverage.Position{}, nil, err
		}
	}

	var start coverage.Position
	if request.Start != nil {
		start = *request.Start
	} else {
		s.mu.Lock()
		start = coverage.Position{Row: s.random.Intn(grid.Rows()), Col: s.random.Intn(grid.Cols())}
		s.mu.Unlock()
	}

	options := []coverage.Option{coverage.WithLogger(s.logger), coverage.WithHooks(s.hooks)}
	if request.Trail != nil {
		options = append(options, coverage.WithTrailLength(*request.Trail))
	}
	if request.TickPauseMS > 0 {
		options = append(options, coverage.WithTickPause(time.Duration(request.TickPauseMS)*time.Millisecond))
	}
	if request.Explore != nil {
		options = append(options, coverage.WithExploreProbability(*request.Explore))
	}
	if request.Seed != nil {
		options = append(options, coverage.WithSeed(*request.Seed))
	}
	return grid, start, options, nil
}

func describe(id string, entry *session) sessionResponse {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	stepper := entry.stepper
	grid := stepper.Grid()
	return sessionResponse{
		ID:       id,
		Rows:     grid.Rows(),
		Cols:     grid.Cols(),
		Start:    stepper.Start(),
		Position: stepper.Position(),
		Steps:    stepper.Steps(),
		Cost:     stepper.Cost(),
		Grid:     grid.Weights(),
	}
}

func decodeRequest(r *http.Request, into any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(into)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Serve runs handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
