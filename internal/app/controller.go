// Package app wires the task client to a rendered view.
//
// The Controller is the error boundary for user actions: every operation
// logs and reports its failures to the user and returns whether it
// succeeded. No error reaches the caller.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/render"
	"github.com/nibzard/tasklist-go/internal/task"
)

// User-facing messages.
const (
	MsgLoadFailed   = "Error loading tasks. Please try again later."
	MsgAddFailed    = "Failed to add task. Please try again."
	MsgToggleFailed = "Failed to update task status. Please try again."
	MsgDeleteFailed = "Failed to delete task. Please try again."
	PromptDelete    = "Are you sure you want to delete this task?"
)

// TaskAPI is the subset of the task client the controller needs.
type TaskAPI interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, title string) (*task.Task, error)
	Toggle(ctx context.Context, t task.Task) error
	Delete(ctx context.Context, id int) error
}

// Dialog asks the user questions and tells them about failures.
type Dialog interface {
	Confirm(ctx context.Context, prompt string) bool
	Notify(ctx context.Context, message string)
}

// Input is a text field the user types a title into.
type Input interface {
	Value() string
	Clear()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller runs the list, add, toggle and delete flows.
type Controller struct {
	api      TaskAPI
	view     render.View
	dialog   Dialog
	renderer *render.Renderer
	logger   *log.Logger
}

// New returns a controller rendering into view.
func New(api TaskAPI, view render.View, dialog Dialog, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		view:   view,
		dialog: dialog,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.renderer = render.NewRenderer(view, c)
	return c
}

// Refresh fetches the list and redraws the view. On failure the list is
// replaced by an error placeholder.
func (c *Controller) Refresh(ctx context.Context) bool {
	tasks, err := c.api.List(ctx)
	if err != nil {
		c.logger.Error("fetching tasks", "op", "list", "err", err)
		c.view.ShowPlaceholder(MsgLoadFailed)
		return false
	}
	c.renderer.Render(tasks)
	return true
}

// Submit creates a task from the input's value. Blank input is ignored.
func (c *Controller) Submit(ctx context.Context, in Input) bool {
	title := task.NormalizeTitle(in.Value())
	if title == "" {
		c.logger.Warn("task title cannot be empty", "op", "create")
		return false
	}
	if _, err := c.api.Create(ctx, title); err != nil {
		c.logger.Error("adding task", "op", "create", "err", err)
		c.dialog.Notify(ctx, MsgAddFailed)
		return false
	}
	in.Clear()
	c.Refresh(ctx)
	return true
}

// Toggle flips a task's completion state and refetches.
func (c *Controller) Toggle(ctx context.Context, t task.Task) bool {
	if err := c.api.Toggle(ctx, t); err != nil {
		c.logger.Error("updating task", "op", "toggle", "task_id", t.ID, "err", err)
		c.dialog.Notify(ctx, MsgToggleFailed)
		return false
	}
	c.Refresh(ctx)
	return true
}

// Delete removes a task after the user confirms. The element is dropped
// from the view once the server accepts the delete; the list is not
// refetched.
func (c *Controller) Delete(ctx context.Context, id int) bool {
	if !c.dialog.Confirm(ctx, PromptDelete) {
		c.logger.Debug("delete declined", "op", "delete", "task_id", id)
		return false
	}
	if err := c.api.Delete(ctx, id); err != nil {
		c.logger.Error("deleting task", "op", "delete", "task_id", id, "err", err)
		c.dialog.Notify(ctx, deleteFailureMessage(id, err))
		return false
	}
	c.view.Remove(id)
	c.logger.Info("task deleted", "task_id", id)
	return true
}

func deleteFailureMessage(id int, err error) string {
	if errors.Is(err, task.ErrNotFound) {
		return fmt.Sprintf("Failed to delete task. Task with ID %d not found.", id)
	}
	if code := task.StatusCodeOf(err); code != 0 {
		return fmt.Sprintf("Failed to delete task. HTTP error! status: %d", code)
	}
	return MsgDeleteFailed
}

var _ render.Actions = (*Controller)(nil)
