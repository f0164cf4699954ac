package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmMsg asks the model to show a y/n prompt. The answer is delivered
// on answer exactly once.
type confirmMsg struct {
	prompt string
	answer chan<- bool
}

// notifyMsg shows a dismissible banner.
type notifyMsg struct {
	message string
}

// programDialog implements app.Dialog by sending requests to a running
// bubbletea program. Confirm blocks the calling command until the user
// answers or ctx is done.
type programDialog struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (d *programDialog) bind(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	d.mu.Unlock()
}

func (d *programDialog) deliver(msg tea.Msg) bool {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

func (d *programDialog) Confirm(ctx context.Context, prompt string) bool {
	answer := make(chan bool, 1)
	if !d.deliver(confirmMsg{prompt: prompt, answer: answer}) {
		return false
	}
	select {
	case ok := <-answer:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (d *programDialog) Notify(_ context.Context, message string) {
	d.deliver(notifyMsg{message: message})
}

// PromptDialog asks on a line-oriented terminal. Notifications are written
// to Out prefixed with "Error: ".
type PromptDialog struct {
	In        io.Reader
	Out       io.Writer
	AssumeYes bool

	once   sync.Once
	reader *bufio.Reader
}

// Confirm prints prompt and reads a y/N answer. AssumeYes skips the read.
func (d *PromptDialog) Confirm(ctx context.Context, prompt string) bool {
	if d.AssumeYes {
		return true
	}
	if d.In == nil {
		return false
	}
	d.once.Do(func() { d.reader = bufio.NewReader(d.In) })
	fmt.Fprintf(d.Out, "%s [y/N] ", prompt)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := d.reader.ReadString('\n')
		ch <- result{line, err}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(d.Out)
		return false
	case r := <-ch:
		if r.err != nil && r.line == "" {
			fmt.Fprintln(d.Out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(r.line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

// Notify writes message on its own line.
func (d *PromptDialog) Notify(_ context.Context, message string) {
	fmt.Fprintf(d.Out, "Error: %s\n", message)
}
