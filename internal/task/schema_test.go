package task

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
		wantPath  string
	}{
		{"empty array", `[]`, 0, false, ""},
		{"two tasks", `[{"id":1,"title":"a","completed":false},{"id":2,"title":"b","completed":true}]`, 2, false, ""},
		{"extra fields allowed", `[{"id":1,"title":"a","completed":false,"created_at":"2024-01-01"}]`, 1, false, ""},
		{"object instead of array", `{}`, 0, true, ""},
		{"missing completed", `[{"id":1,"title":"a"}]`, 0, true, "[0]"},
		{"bad title type", `[{"id":1,"title":"a","completed":false},{"id":2,"title":3,"completed":false}]`, 0, true, "[1].title"},
		{"fractional id", `[{"id":1.5,"title":"a","completed":false}]`, 0, true, "[0].id"},
		{"zero id", `[{"id":0,"title":"a","completed":false}]`, 0, true, "[0].id"},
		{"not json", `nope`, 0, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := DecodeList([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeList(%s): expected error", tt.data)
				}
				if tt.wantPath != "" {
					var ve *ValidationError
					if !errors.As(err, &ve) {
						t.Fatalf("DecodeList(%s): got %v, want *ValidationError", tt.data, err)
					}
					if !strings.Contains(err.Error(), tt.wantPath) {
						t.Errorf("error %q does not mention %q", err.Error(), tt.wantPath)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeList(%s): %v", tt.data, err)
			}
			if len(tasks) != tt.wantCount {
				t.Errorf("count: got %d, want %d", len(tasks), tt.wantCount)
			}
			if tasks == nil {
				t.Error("tasks: got nil slice, want non-nil")
			}
		})
	}
}

func TestFind(t *testing.T) {
	tasks := []Task{{ID: 1, Title: "a"}, {ID: 4, Title: "b"}}
	if got := Find(tasks, 4); got == nil || got.Title != "b" {
		t.Errorf("Find(4): got %+v", got)
	}
	if got := Find(tasks, 2); got != nil {
		t.Errorf("Find(2): got %+v, want nil", got)
	}
}

func TestInstancePath(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"/":             "",
		"#/0/title":     "[0].title",
		"/2/id":         "[2].id",
		"/a~1b/c~0d/10": "a/b.c~d[10]",
	}
	for ptr, want := range tests {
		if got := instancePath(ptr); got != want {
			t.Errorf("instancePath(%q) = %q, want %q", ptr, got, want)
		}
	}
}
