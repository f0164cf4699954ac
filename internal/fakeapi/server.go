package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/nibzard/tasklist-go/internal/task"
)

// Option configures a Server.
type Option func(*Server)

// WithAtomic mounts the /atomic/ isolation endpoints.
func WithAtomic(enabled bool) Option {
	return func(s *Server) {
		s.atomic = enabled
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server exposes a Store over the task REST API.
type Server struct {
	store  *Store
	router *mux.Router
	logger *log.Logger
	atomic bool
}

// NewServer builds the router for store.
func NewServer(store *Store, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/health/", s.Health).Methods(http.MethodGet)
	router.HandleFunc("/tasks/", s.GetTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks/", s.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{id:[0-9]+}/", s.GetTask).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id:[0-9]+}/", s.UpdateTask).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc("/tasks/{id:[0-9]+}/", s.DeleteTask).Methods(http.MethodDelete)
	if s.atomic {
		router.HandleFunc("/atomic/begin/", s.AtomicBegin).Methods(http.MethodGet)
		router.HandleFunc("/atomic/setup/", s.AtomicSetup).Methods(http.MethodGet)
		router.HandleFunc("/atomic/rollback/", s.AtomicRollback).Methods(http.MethodGet)
	}
	router.Use(s.logRequests)
	s.router = router
	return s
}

// ServeHTTP answers CORS preflights and dispatches everything else.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+task.RequestIDHeader)
		w.WriteHeader(http.StatusOK)
		return
	}
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	s.logger.Info("task api listening", "addr", addr, "atomic", s.atomic)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("api request", "method", r.Method, "path", r.URL.Path, "request_id", r.Header.Get(task.RequestIDHeader))
		next.ServeHTTP(w, r)
	})
}

// respondWithJSON formats and sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithDetail(w http.ResponseWriter, code int, detail string) {
	respondWithJSON(w, code, map[string]string{"detail": detail})
}

func taskID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetTasks lists all tasks in id order.
func (s *Server) GetTasks(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.store.List())
}

// taskInput uses pointers so PATCH can tell absent fields from zero values.
type taskInput struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

func decodeInput(r *http.Request) (taskInput, error) {
	var in taskInput
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, err
	}
	return in, nil
}

func requiredTitle(w http.ResponseWriter, in taskInput) (string, bool) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		respondWithJSON(w, http.StatusBadRequest, map[string][]string{"title": {"This field is required."}})
		return "", false
	}
	return strings.TrimSpace(*in.Title), true
}

// CreateTask stores a new task from {"title": ..., "completed": ...}.
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		respondWithDetail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	title, ok := requiredTitle(w, in)
	if !ok {
		return
	}
	completed := in.Completed != nil && *in.Completed
	respondWithJSON(w, http.StatusCreated, s.store.Create(title, completed))
}

// GetTask returns one task.
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respondWithDetail(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	t, found := s.store.Get(id)
	if !found {
		respondWithDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// UpdateTask replaces (PUT) or patches (PATCH) a task.
func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respondWithDetail(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	in, err := decodeInput(r)
	if err != nil {
		respondWithDetail(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if r.Method == http.MethodPut {
		title, ok := requiredTitle(w, in)
		if !ok {
			return
		}
		completed := in.Completed != nil && *in.Completed
		in = taskInput{Title: &title, Completed: &completed}
	} else if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		requiredTitle(w, in)
		return
	}

	t, found := s.store.Update(id, func(t *task.Task) {
		if in.Title != nil {
			t.Title = strings.TrimSpace(*in.Title)
		}
		if in.Completed != nil {
			t.Completed = *in.Completed
		}
	})
	if !found {
		respondWithDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// DeleteTask removes a task.
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		respondWithDetail(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	if !s.store.Delete(id) {
		respondWithDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AtomicBegin opens a reversible context.
func (s *Server) AtomicBegin(w http.ResponseWriter, r *http.Request) {
	depth := s.store.Begin()
	s.logger.Debug("atomic begin", "depth", depth)
	w.WriteHeader(http.StatusNoContent)
}

// AtomicSetup is the fixture hook. The in-memory store has no fixtures.
func (s *Server) AtomicSetup(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AtomicRollback restores the state captured by the latest begin.
func (s *Server) AtomicRollback(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Rollback(); err != nil {
		s.logger.Warn("atomic rollback failed", "err", err)
		respondWithDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("atomic rollback", "depth", s.store.Depth())
	w.WriteHeader(http.StatusNoContent)
}
