// Package task talks to the REST task API and validates what it returns.
package task

import (
	"errors"
	"fmt"
	"strings"
)

// Task is a single to-do item as served by the API.
type Task struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// IsZero returns true if the task has not been assigned an ID.
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// Find returns the task with the given ID, or nil if it is not in tasks.
func Find(tasks []Task, id int) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

// NormalizeTitle trims surrounding whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// Kind classifies a failed API call.
type Kind int

const (
	// KindTransport means no response was received.
	KindTransport Kind = iota + 1
	// KindStatus means the response status was outside the 2xx range.
	KindStatus
	// KindInvalidResponse means the response body could not be used.
	KindInvalidResponse
	// KindValidation means the request was rejected before it was sent.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindInvalidResponse:
		return "invalid response"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound matches a *Error whose response status was 404.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyTitle is returned by Create when the trimmed title is empty.
	ErrEmptyTitle = errors.New("task title is empty")
)

// Error is the single failure shape returned by Client methods.
type Error struct {
	Op         string // list, create, update, delete, health, isolation
	Kind       Kind
	StatusCode int // set for KindStatus
	TaskID     int // set for item operations
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.TaskID != 0 {
		fmt.Fprintf(&b, " task %d", e.TaskID)
	}
	switch {
	case e.Kind == KindStatus:
		fmt.Fprintf(&b, ": HTTP error! status: %d", e.StatusCode)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(": ")
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches ErrNotFound for a 404 status.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindStatus && e.StatusCode == 404
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var te *Error
	if errors.As(err, &te) && te.Kind == KindStatus {
		return te.StatusCode
	}
	return 0
}
