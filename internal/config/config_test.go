// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// isolate points every config location at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		EnvAPIURL, "TASKLIST_LISTEN_ADDR", "TASKLIST_TIMEOUT", "TASKLIST_LOG_DIR",
		"TASKLIST_LOG_LEVEL", "TASKLIST_LOG_FORMAT", "TASKLIST_LOG_TIMESTAMPS", "TASKLIST_LOG_CALLER",
	} {
		t.Setenv(key, "")
	}
	work := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", work)
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL: got %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr: got %q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.RequestTimeout() != 0 {
		t.Errorf("RequestTimeout: got %v, want 0", cfg.RequestTimeout())
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL: got %q", cfg.APIURL)
	}
	if want := filepath.Join(home, ".tasklist"); cfg.LogDir != want {
		t.Errorf("LogDir: got %q, want %q", cfg.LogDir, want)
	}
	for _, field := range ConfigFields() {
		if cws.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want default", field, cws.Sources[field])
		}
	}
	if cws.GetConfigFile() != "" {
		t.Errorf("config file: got %q, want none", cws.GetConfigFile())
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)

	writeFile(t, filepath.Join(home, ".tasklist", "tasklist.toml"), `
api_url = "http://user.example:8000"
listen_addr = "localhost:9000"
log_level = "warn"
`)
	writeFile(t, "tasklist.toml", `
api_url = "http://project.example:8000/"
request_timeout_seconds = 5
`)
	writeFile(t, ".env", "API_URL=http://dotenv.example:8000\nOTHER=ignored\n")
	t.Setenv("TASKLIST_LOG_FORMAT", "json")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-log-level", "debug", "extra"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		field      string
		wantValue  string
		wantSource ConfigSource
	}{
		{"api_url", "http://dotenv.example:8000", SourceDotEnv},
		{"listen_addr", "localhost:9000", SourceUserFile},
		{"request_timeout_seconds", "5", SourceProjFile},
		{"log_format", "json", SourceEnv},
		{"log_level", "debug", SourceFlag},
		{"log_caller", "false", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := cfg.Value(tt.field); got != tt.wantValue {
				t.Errorf("value: got %q, want %q", got, tt.wantValue)
			}
			if got := cws.Sources[tt.field]; got != tt.wantSource {
				t.Errorf("source: got %q, want %q", got, tt.wantSource)
			}
		})
	}

	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout: got %v, want 5s", cfg.RequestTimeout())
	}
	if got := fs.Args(); len(got) != 1 || got[0] != "extra" {
		t.Errorf("remaining args: got %v, want [extra]", got)
	}
	if len(cws.Files) != 3 || cws.GetConfigFile() != ".env" {
		t.Errorf("files: got %v", cws.Files)
	}
	if os.Getenv("OTHER") != "" {
		t.Error(".env leaked into the process environment")
	}
}

func TestLoadEnvAPIURLOverridesDotEnv(t *testing.T) {
	isolate(t)
	writeFile(t, ".env", "API_URL=http://dotenv.example:8000\n")
	t.Setenv(EnvAPIURL, "http://env.example:8000///")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://env.example:8000" {
		t.Errorf("APIURL: got %q, want trailing slashes stripped", cfg.APIURL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{"unknown key", "bogus = 1\n", nil, nil, "unknown keys: bogus"},
		{"bad toml", "api_url = \n", nil, nil, "project config file"},
		{"bad timeout env", "", map[string]string{"TASKLIST_TIMEOUT": "soon"}, nil, "TASKLIST_TIMEOUT"},
		{"negative timeout", "", nil, []string{"-timeout", "-1"}, "must not be negative"},
		{"empty api url", "", nil, []string{"-api-url", " "}, "api_url is empty"},
		{"unknown flag", "", nil, []string{"-nope"}, "parsing flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if tt.file != "" {
				writeFile(t, "tasklist.toml", tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(&strings.Builder{})
			_, err := Load(fs, tt.args)
			if err == nil {
				t.Fatal("Load: expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	isolate(t)
	writeFile(t, "tasklist.toml", ExampleConfig())

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cws.Sources["api_url"] != SourceProjFile {
		t.Errorf("api_url source: got %q", cws.Sources["api_url"])
	}
	if cws.Config.APIURL != DefaultAPIURL {
		t.Errorf("api_url: got %q", cws.Config.APIURL)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("TASKLIST_TEST_HOME", home)
		tests = append(tests, struct {
			input string
			want  string
		}{`%TASKLIST_TEST_HOME%\logs`, filepath.Join(home, "logs")})
	} else {
		tests = append(tests, struct {
			input string
			want  string
		}{`~\test`, `~\test`})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := boolFromString(tt.input); got != tt.want {
				t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
