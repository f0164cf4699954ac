// Package render rebuilds the visible task list from a task sequence.
//
// The renderer knows nothing about terminals or HTML. It produces Elements,
// each describing one list item and its handlers, and hands them to a View.
// Surfaces read the View back and draw it however they like.
package render

import (
	"context"
	"strconv"

	"github.com/nibzard/tasklist-go/internal/task"
)

// Class names carried by elements.
const (
	ClassCompleted    = "completed"
	ClassDeleteButton = "delete-button"
)

// TextDecorationLineThrough is the decoration applied to completed items.
const TextDecorationLineThrough = "line-through"

// DeleteLabel is the text of the nested delete control.
const DeleteLabel = "Delete"

// Actions are the operations element handlers invoke.
type Actions interface {
	Toggle(ctx context.Context, t task.Task) bool
	Delete(ctx context.Context, id int) bool
}

// Control is a nested interactive child of an element.
type Control struct {
	Label   string
	Classes []string
	OnClick func(ctx context.Context)
}

// Element is one rendered list item.
type Element struct {
	TaskID         int // data-task-id
	Text           string
	Completed      bool
	Classes        []string
	TextDecoration string
	OnClick        func(ctx context.Context)
	Delete         Control
}

// DataTaskID returns the task id attribute value.
func (e Element) DataTaskID() string {
	return strconv.Itoa(e.TaskID)
}

// HasClass reports whether the element carries class.
func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Click activates the element itself, which toggles its task.
func (e Element) Click(ctx context.Context) {
	if e.OnClick != nil {
		e.OnClick(ctx)
	}
}

// ClickDelete activates the nested delete control. The click does not
// reach the element's own handler.
func (e Element) ClickDelete(ctx context.Context) {
	if e.Delete.OnClick != nil {
		e.Delete.OnClick(ctx)
	}
}

// NewElement builds the element for t with handlers bound to actions.
func NewElement(t task.Task, actions Actions) Element {
	el := Element{
		TaskID:    t.ID,
		Text:      t.Title,
		Completed: t.Completed,
		Delete: Control{
			Label:   DeleteLabel,
			Classes: []string{ClassDeleteButton},
		},
	}
	if t.Completed {
		el.Classes = []string{ClassCompleted}
		el.TextDecoration = TextDecorationLineThrough
	}
	if actions != nil {
		el.OnClick = func(ctx context.Context) { actions.Toggle(ctx, t) }
		el.Delete.OnClick = func(ctx context.Context) { actions.Delete(ctx, t.ID) }
	}
	return el
}

// View is the list container a Renderer draws into.
type View interface {
	// Clear removes every child, including a placeholder.
	Clear()
	// Append adds el after the existing children.
	Append(el Element)
	// Remove drops the element for the task id and reports whether it existed.
	Remove(taskID int) bool
	// ShowPlaceholder replaces the list content with a single message.
	ShowPlaceholder(text string)
}

// Renderer rebuilds a View from task sequences.
type Renderer struct {
	view    View
	actions Actions
}

// NewRenderer returns a renderer drawing into view.
func NewRenderer(view View, actions Actions) *Renderer {
	return &Renderer{view: view, actions: actions}
}

// Render clears the view and appends one element per task, in order.
func (r *Renderer) Render(tasks []task.Task) {
	r.view.Clear()
	for _, t := range tasks {
		r.view.Append(NewElement(t, r.actions))
	}
}
