// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tasklist-go/internal/app"
	"github.com/nibzard/tasklist-go/internal/fakeapi"
	"github.com/nibzard/tasklist-go/internal/task"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	runErr := fn()
	_ = w.Close()

	output, readErr := io.ReadAll(r)
	_ = r.Close()
	if readErr != nil {
		t.Fatalf("ReadAll() error = %v", readErr)
	}

	return string(output), runErr
}

// isolate points config lookup at empty temp dirs and clears the env.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		"API_URL", "TASKLIST_LISTEN_ADDR", "TASKLIST_TIMEOUT", "TASKLIST_LOG_DIR",
		"TASKLIST_LOG_FORMAT", "TASKLIST_LOG_TIMESTAMPS", "TASKLIST_LOG_CALLER",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TASKLIST_LOG_LEVEL", "error")
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return home
}

// withAPI starts the stand-in API and points API_URL at it.
func withAPI(t *testing.T) *fakeapi.Store {
	t.Helper()
	isolate(t)
	store := fakeapi.NewStore()
	srv := httptest.NewServer(fakeapi.NewServer(store))
	t.Cleanup(srv.Close)
	t.Setenv("API_URL", srv.URL)
	return store
}

func deadAPI(t *testing.T) {
	t.Helper()
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	t.Setenv("API_URL", srv.URL)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureStdout(t, func() error {
		return Run(context.Background(), args)
	})
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{{"--help"}, {"-h"}, {"help"}} {
		t.Run("help "+args[0], func(t *testing.T) {
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(out, "Usage:") || !strings.Contains(out, "-api-url") {
				t.Errorf("usage output missing sections:\n%s", out)
			}
		})
	}

	for _, args := range [][]string{{"--version"}, {"-v"}, {"version"}} {
		t.Run("version "+args[0], func(t *testing.T) {
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if strings.TrimSpace(out) != "tasklist version "+Version {
				t.Errorf("version output: got %q", out)
			}
		})
	}

	t.Run("unknown command returns error", func(t *testing.T) {
		_, err := run(t, "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("bad config surfaces", func(t *testing.T) {
		t.Setenv("TASKLIST_TIMEOUT", "soon")
		_, err := run(t, "ls")
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestTaskCommands(t *testing.T) {
	store := withAPI(t)

	out, err := run(t, "add", "Buy", "groceries")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "[ ]    1  Buy groceries") {
		t.Errorf("add output: got %q", out)
	}

	out, err = run(t, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if strings.TrimSpace(out) != "[ ]    1  Buy groceries" {
		t.Errorf("ls output: got %q", out)
	}

	out, err = run(t, "toggle", "1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !strings.Contains(out, "[x]    1  Buy groceries") {
		t.Errorf("toggle output: got %q", out)
	}
	if got, _ := store.Get(1); !got.Completed {
		t.Error("task not completed after toggle")
	}

	out, err = run(t, "rm", "-y", "1")
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	if strings.TrimSpace(out) != "Deleted task 1." {
		t.Errorf("rm output: got %q", out)
	}
	if store.Count() != 0 {
		t.Errorf("store count after rm: %d", store.Count())
	}

	out, err = run(t, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if strings.TrimSpace(out) != "No tasks." {
		t.Errorf("empty ls output: got %q", out)
	}
}

func TestTaskCommandErrors(t *testing.T) {
	withAPI(t)

	tests := []struct {
		name    string
		args    []string
		wantIs  error
		wantMsg string
	}{
		{name: "blank add", args: []string{"add", "  "}, wantIs: task.ErrEmptyTitle},
		{name: "toggle missing task", args: []string{"toggle", "7"}, wantIs: task.ErrNotFound},
		{name: "rm missing task", args: []string{"rm", "-y", "7"}, wantIs: ErrActionFailed},
		{name: "toggle without id", args: []string{"toggle"}, wantMsg: "expected one task id"},
		{name: "rm bad id", args: []string{"rm", "-y", "abc"}, wantMsg: "invalid task id"},
		{name: "rm zero id", args: []string{"rm", "0"}, wantMsg: "invalid task id"},
		{name: "ls extra args", args: []string{"ls", "extra"}, wantMsg: "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error: got %v, want %v", err, tt.wantIs)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error: got %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLsAPIDown(t *testing.T) {
	deadAPI(t)

	out, err := run(t, "ls")
	if !errors.Is(err, ErrActionFailed) {
		t.Fatalf("expected ErrActionFailed, got %v", err)
	}
	if strings.TrimSpace(out) != app.MsgLoadFailed {
		t.Errorf("placeholder output: got %q", out)
	}
}

func TestDoctor(t *testing.T) {
	t.Run("passes against a live api", func(t *testing.T) {
		store := withAPI(t)
		store.Create("Task 1", false)
		out, err := run(t, "doctor", "-v")
		if err != nil {
			t.Fatalf("doctor: %v\n%s", err, out)
		}
		for _, want := range []string{"Tasklist Doctor", "Health check OK", "Task list OK (1 tasks)", "[1] Task 1", "All checks passed"} {
			if !strings.Contains(out, want) {
				t.Errorf("doctor output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("fails when the api is down", func(t *testing.T) {
		deadAPI(t)
		out, err := run(t, "doctor")
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Fatalf("expected doctor failure, got %v", err)
		}
		if !strings.Contains(out, "❌ Health check") {
			t.Errorf("doctor output missing health failure:\n%s", out)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	t.Setenv("API_URL", "http://api.example.test/")

	out, err := run(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, `api_url = "http://localhost:8000"`) {
		t.Errorf("example config output:\n%s", out)
	}

	out, err = run(t, "config", "-show")
	if err != nil {
		t.Fatalf("config -show: %v", err)
	}
	var apiLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "api_url ") {
			apiLine = line
		}
	}
	if !strings.Contains(apiLine, `"http://api.example.test"`) || !strings.Contains(apiLine, "# environment") {
		t.Errorf("api_url line: got %q", apiLine)
	}
}

func TestTailNoLogs(t *testing.T) {
	isolate(t)
	t.Setenv("TASKLIST_LOG_DIR", t.TempDir())

	out, err := run(t, "tail")
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if strings.TrimSpace(out) != "No log files found." {
		t.Errorf("tail output: got %q", out)
	}
}

func TestServersStopOnCancel(t *testing.T) {
	withAPI(t)

	for _, args := range [][]string{
		{"serve", "-addr", "127.0.0.1:0"},
		{"api", "-addr", "127.0.0.1:0"},
	} {
		t.Run(args[0], func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- Run(ctx, args)
			}()
			time.Sleep(50 * time.Millisecond)
			cancel()
			select {
			case err := <-done:
				if err != nil {
					t.Errorf("expected clean shutdown, got %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("server did not stop")
			}
		})
	}
}

func TestParseTaskID(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{args: []string{"3"}, want: 3},
		{args: []string{"0"}, wantErr: true},
		{args: []string{"-1"}, wantErr: true},
		{args: []string{"x"}, wantErr: true},
		{args: nil, wantErr: true},
		{args: []string{"1", "2"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTaskID(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTaskID(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTaskID(%v) = %d, want %d", tt.args, got, tt.want)
		}
	}
}

func TestAPIListenAddr(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://localhost:8000", "localhost:8000"},
		{"http://127.0.0.1:9999/api", "127.0.0.1:9999"},
		{"http://tasks.internal", "tasks.internal:8000"},
		{"::bad", "localhost:8000"},
	}
	for _, tt := range tests {
		if got := apiListenAddr(tt.url); got != tt.want {
			t.Errorf("apiListenAddr(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
