package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/task"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// session is a one-shot controller printing to stdout and asking on stdin.
type session struct {
	ctrl   *app.Controller
	view   *ui.TextView
	dialog *cliDialog
	client *task.Client
}

// cliDialog records whether a failure was reported.
type cliDialog struct {
	*ui.PromptDialog
	failed bool
}

func (d *cliDialog) Notify(ctx context.Context, message string) {
	d.failed = true
	d.PromptDialog.Notify(ctx, message)
}

func newSession(cfg *config.Config, assumeYes bool) (*session, error) {
	logger := commandLogger(cfg)
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	view := ui.NewTextView()
	dialog := &cliDialog{PromptDialog: &ui.PromptDialog{In: os.Stdin, Out: os.Stderr, AssumeYes: assumeYes}}
	return &session{
		ctrl:   app.New(client, view, dialog, app.WithLogger(logger)),
		view:   view,
		dialog: dialog,
		client: client,
	}, nil
}

func (s *session) print() error {
	_, err := s.view.WriteTo(os.Stdout)
	return err
}

// argInput is a title given on the command line.
type argInput struct {
	value string
}

func (a *argInput) Value() string { return a.value }
func (a *argInput) Clear()        { a.value = "" }

// lsCommand prints the task list.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist ls", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	ok := s.ctrl.Refresh(ctx)
	if err := s.print(); err != nil {
		return err
	}
	if !ok {
		return ErrActionFailed
	}
	return nil
}

// addCommand creates a task from the remaining arguments and prints the list.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	title := task.NormalizeTitle(strings.Join(args, " "))
	if title == "" {
		return fmt.Errorf("add: %w", task.ErrEmptyTitle)
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	if !s.ctrl.Submit(ctx, &argInput{value: title}) {
		return ErrActionFailed
	}
	return s.print()
}

// toggleCommand flips the completion state of a task.
func toggleCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist toggle", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseTaskID(fs.Args())
	if err != nil {
		return err
	}

	s, err := newSession(cfg, false)
	if err != nil {
		return err
	}
	// The update body needs the current state, so look it up first.
	tasks, err := s.client.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", app.MsgLoadFailed)
		return ErrActionFailed
	}
	current := task.Find(tasks, id)
	if current == nil {
		return fmt.Errorf("toggle: task %d: %w", id, task.ErrNotFound)
	}
	if !s.ctrl.Toggle(ctx, *current) {
		return ErrActionFailed
	}
	return s.print()
}

// rmCommand deletes a task after confirmation.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist rm", flag.ContinueOnError)
	yes := fs.Bool("y", false, "Delete without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseTaskID(fs.Args())
	if err != nil {
		return err
	}

	s, err := newSession(cfg, *yes)
	if err != nil {
		return err
	}
	if !s.ctrl.Delete(ctx, id) {
		if s.dialog.failed {
			return ErrActionFailed
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Println("Cancelled.")
		return nil
	}
	fmt.Printf("Deleted task %d.\n", id)
	return nil
}

func parseTaskID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one task id, got %d arguments", len(args))
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}
