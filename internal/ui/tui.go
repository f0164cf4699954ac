// Package ui provides the terminal surfaces for the task list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/render"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	logger  *log.Logger
	apiURL  string
	program []tea.ProgramOption
}

// WithLogger sets the logger handed to the controller.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// WithAPIURL sets the address shown in the header.
func WithAPIURL(apiURL string) TUIOption {
	return func(c *tuiConfig) {
		c.apiURL = apiURL
	}
}

// WithProgramOptions appends bubbletea program options.
func WithProgramOptions(opts ...tea.ProgramOption) TUIOption {
	return func(c *tuiConfig) {
		c.program = append(c.program, opts...)
	}
}

// RunTUI runs the interactive task list until the user quits or ctx is done.
func RunTUI(ctx context.Context, api app.TaskAPI, opts ...TUIOption) error {
	c := &tuiConfig{}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	dialog := &programDialog{}
	view := render.NewListView()
	ctrl := app.New(api, view, dialog, app.WithLogger(c.logger))
	model := newTUIModel(ctx, ctrl, view)
	model.apiURL = c.apiURL

	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, c.program...)
	program := tea.NewProgram(model, programOpts...)
	dialog.bind(program.Send)

	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type focus int

const (
	focusInput focus = iota
	focusList
)

// textField is the title input. Commands read and clear it from their own
// goroutines.
type textField struct {
	mu    sync.Mutex
	value []rune
}

func (f *textField) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.value)
}

func (f *textField) Clear() {
	f.mu.Lock()
	f.value = nil
	f.mu.Unlock()
}

func (f *textField) insert(r []rune) {
	f.mu.Lock()
	f.value = append(f.value, r...)
	f.mu.Unlock()
}

func (f *textField) backspace() {
	f.mu.Lock()
	if n := len(f.value); n > 0 {
		f.value = f.value[:n-1]
	}
	f.mu.Unlock()
}

type tuiModel struct {
	ctx     context.Context
	ctrl    *app.Controller
	view    *render.ListView
	input   *textField
	apiURL  string
	focus   focus
	cursor  int
	pending int
	confirm *confirmMsg
	notice  string
}

// actionDoneMsg is returned by every controller command.
type actionDoneMsg struct{}

func newTUIModel(ctx context.Context, ctrl *app.Controller, view *render.ListView) *tuiModel {
	return &tuiModel{
		ctx:   ctx,
		ctrl:  ctrl,
		view:  view,
		input: &textField{},
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return m.run(func(ctx context.Context) { m.ctrl.Refresh(ctx) })
}

// run executes fn off the update loop.
func (m *tuiModel) run(fn func(ctx context.Context)) tea.Cmd {
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return actionDoneMsg{}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.answer(false)
			return m, tea.Quit
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		if msg.Type == tea.KeyEsc && m.notice != "" {
			m.notice = ""
			return m, nil
		}
		if msg.Type == tea.KeyTab || msg.Type == tea.KeyShiftTab {
			m.switchFocus()
			return m, nil
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	case confirmMsg:
		m.answer(false)
		m.confirm = &msg
	case notifyMsg:
		m.notice = msg.message
	case actionDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		m.clampCursor()
	}
	return m, nil
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.answer(true)
	case "n", "esc", "enter", "q":
		m.answer(false)
	}
	return m, nil
}

// answer resolves a pending confirm prompt, if any.
func (m *tuiModel) answer(ok bool) {
	if m.confirm == nil {
		return
	}
	m.confirm.answer <- ok
	m.confirm = nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.run(func(ctx context.Context) { m.ctrl.Submit(ctx, m.input) })
	case tea.KeyBackspace:
		m.input.backspace()
	case tea.KeyCtrlU:
		m.input.Clear()
	case tea.KeySpace:
		m.input.insert([]rune{' '})
	case tea.KeyRunes:
		m.input.insert(msg.Runes)
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.view.Len()-1 {
			m.cursor++
		}
	case "enter", " ":
		if el, ok := m.selected(); ok {
			return m, m.run(el.Click)
		}
	case "d", "x":
		if el, ok := m.selected(); ok {
			return m, m.run(el.ClickDelete)
		}
	case "r":
		return m, m.run(func(ctx context.Context) { m.ctrl.Refresh(ctx) })
	}
	return m, nil
}

func (m *tuiModel) switchFocus() {
	if m.focus == focusInput {
		m.focus = focusList
		m.clampCursor()
		return
	}
	m.focus = focusInput
}

func (m *tuiModel) selected() (render.Element, bool) {
	items := m.view.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return render.Element{}, false
	}
	return items[m.cursor], true
}

func (m *tuiModel) clampCursor() {
	n := m.view.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Faint(true)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	deleteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Padding(0, 1)
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
)

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.apiURL)
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice) + "  " + dimStyle.Render("esc to dismiss") + "\n\n")
	}
	writeInput(&b, m.input.Value(), m.focus == focusInput)
	writeList(&b, m.view, m.cursor, m.focus == focusList)
	if m.confirm != nil {
		b.WriteString(promptStyle.Render(m.confirm.prompt+" [y/N]") + "\n\n")
	}
	writeFooter(&b, m.focus, m.pending)
	return b.String()
}

func writeTitle(b *strings.Builder, apiURL string) {
	title := "Tasks"
	b.WriteString(titleStyle.Render(title))
	if apiURL != "" {
		b.WriteString("  " + dimStyle.Render(apiURL))
	}
	b.WriteString("\n" + strings.Repeat("=", len(title)) + "\n\n")
}

func writeInput(b *strings.Builder, value string, focused bool) {
	marker := "  "
	caret := ""
	if focused {
		marker = cursorStyle.Render("> ")
		caret = "_"
	}
	b.WriteString(marker + "New task: " + value + caret + "\n\n")
}

func writeList(b *strings.Builder, view *render.ListView, cursor int, focused bool) {
	if p := view.Placeholder(); p != "" {
		b.WriteString("  " + p + "\n\n")
		return
	}
	items := view.Items()
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  No tasks yet.") + "\n\n")
		return
	}
	for i, el := range items {
		b.WriteString(formatItem(el, focused && i == cursor) + "\n")
	}
	b.WriteString("\n")
}

func formatItem(el render.Element, selected bool) string {
	marker := "  "
	if selected {
		marker = cursorStyle.Render("> ")
	}
	check := "[ ]"
	text := el.Text
	if el.Completed {
		check = "[x]"
		text = completedStyle.Render(text)
	}
	return fmt.Sprintf("%s%s %s  %s", marker, check, text, deleteStyle.Render(el.Delete.Label))
}

func writeFooter(b *strings.Builder, f focus, pending int) {
	if f == focusInput {
		b.WriteString(dimStyle.Render("enter add | tab list | ctrl+c quit"))
	} else {
		b.WriteString(dimStyle.Render("j/k move | enter toggle | d delete | r refresh | tab input | q quit"))
	}
	if pending > 0 {
		b.WriteString("  " + dimStyle.Render("working..."))
	}
	b.WriteString("\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
