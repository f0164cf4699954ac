package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/render"
	"github.com/nibzard/tasklist-go/internal/task"
)

// pageDialog collects notifications for one request. The browser asks for
// delete confirmation before the form is posted, so Confirm always agrees.
type pageDialog struct {
	messages []string
}

func (d *pageDialog) Confirm(context.Context, string) bool { return true }

func (d *pageDialog) Notify(_ context.Context, message string) {
	d.messages = append(d.messages, message)
}

// formInput is the posted title field.
type formInput struct {
	value string
}

func (f *formInput) Value() string { return f.value }
func (f *formInput) Clear()        { f.value = "" }

type itemData struct {
	ID             int
	Text           string
	Completed      bool
	Classes        string
	TextDecoration string
	DeleteLabel    string
	DeleteClass    string
}

type pageData struct {
	Items        []itemData
	Placeholder  string
	Notice       string
	Value        string
	DeletePrompt string
}

// request bundles the per-request controller and its collaborators.
type request struct {
	ctrl   *app.Controller
	view   *render.ListView
	dialog *pageDialog
}

func (s *Server) newRequest() *request {
	view := render.NewListView()
	dialog := &pageDialog{}
	return &request{
		ctrl:   app.New(s.api, view, dialog, app.WithLogger(s.logger)),
		view:   view,
		dialog: dialog,
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	r := s.newRequest()
	r.ctrl.Refresh(c.Request.Context())
	s.renderPage(c, http.StatusOK, r, "")
}

func (s *Server) handleCreate(c *gin.Context) {
	r := s.newRequest()
	in := &formInput{value: c.PostForm("title")}
	if r.ctrl.Submit(c.Request.Context(), in) || len(r.dialog.messages) == 0 {
		// Blank titles are dropped without a notice.
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.renderFailure(c, r, in.Value())
}

func (s *Server) handleToggle(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	completed, _ := strconv.ParseBool(c.PostForm("completed"))
	r := s.newRequest()
	if r.ctrl.Toggle(c.Request.Context(), task.Task{ID: id, Completed: completed}) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.renderFailure(c, r, "")
}

func (s *Server) handleDelete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	r := s.newRequest()
	if r.ctrl.Delete(c.Request.Context(), id) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.renderFailure(c, r, "")
}

// renderFailure redraws the current list with the collected notice.
func (s *Server) renderFailure(c *gin.Context, r *request, value string) {
	r.ctrl.Refresh(c.Request.Context())
	s.renderPage(c, http.StatusBadGateway, r, value)
}

func (s *Server) renderPage(c *gin.Context, status int, r *request, value string) {
	data := pageData{
		Placeholder:  r.view.Placeholder(),
		Notice:       strings.Join(r.dialog.messages, "\n"),
		Value:        value,
		DeletePrompt: app.PromptDelete,
	}
	for _, el := range r.view.Items() {
		data.Items = append(data.Items, itemData{
			ID:             el.TaskID,
			Text:           el.Text,
			Completed:      el.Completed,
			Classes:        strings.Join(el.Classes, " "),
			TextDecoration: el.TextDecoration,
			DeleteLabel:    el.Delete.Label,
			DeleteClass:    strings.Join(el.Delete.Classes, " "),
		})
	}
	c.HTML(status, "index.html", data)
}

func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "invalid task id %q", c.Param("id"))
		return 0, false
	}
	return id, true
}
