// Package fakeapi serves an in-memory task API for local development and tests.
package fakeapi

import (
	"errors"
	"sync"

	"github.com/nibzard/tasklist-go/internal/task"
)

// ErrNoAtomicContext is returned by Rollback when Begin was never called.
var ErrNoAtomicContext = errors.New("not inside an atomic context")

type snapshot struct {
	tasks  []task.Task
	nextID int
}

// Store holds tasks in id order. Begin and Rollback nest like savepoints.
type Store struct {
	mu        sync.Mutex
	tasks     []task.Task
	nextID    int
	snapshots []snapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// List returns a copy of all tasks in id order.
func (s *Store) List() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Count returns the number of stored tasks.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Get returns the task with id.
func (s *Store) Get(id int) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := task.Find(s.tasks, id); t != nil {
		return *t, true
	}
	return task.Task{}, false
}

// Create stores a new task and assigns it the next id.
func (s *Store) Create(title string, completed bool) task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := task.Task{ID: s.nextID, Title: title, Completed: completed}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t
}

// Update applies fn to the task with id and returns the result.
func (s *Store) Update(id int, fn func(*task.Task)) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := task.Find(s.tasks, id)
	if t == nil {
		return task.Task{}, false
	}
	fn(t)
	t.ID = id
	return *t, true
}

// Delete removes the task with id.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Begin snapshots the current state and returns the new nesting depth.
func (s *Store) Begin() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot{tasks: cloneTasks(s.tasks), nextID: s.nextID})
	return len(s.snapshots)
}

// Rollback restores the most recent snapshot.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return ErrNoAtomicContext
	}
	last := s.snapshots[len(s.snapshots)-1]
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
	s.tasks = last.tasks
	s.nextID = last.nextID
	return nil
}

// Depth returns how many atomic contexts are open.
func (s *Store) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func cloneTasks(in []task.Task) []task.Task {
	out := make([]task.Task, len(in))
	copy(out, in)
	return out
}
