package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tasklist-go/internal/render"
)

// TextView is a render.View that prints the list as plain lines.
type TextView struct {
	*render.ListView
}

// NewTextView returns an empty text view.
func NewTextView() *TextView {
	return &TextView{ListView: render.NewListView()}
}

// WriteTo writes one line per task, or the placeholder, to w.
func (v *TextView) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if p := v.Placeholder(); p != "" {
		b.WriteString(p + "\n")
	} else {
		items := v.Items()
		if len(items) == 0 {
			b.WriteString("No tasks.\n")
		}
		for _, el := range items {
			b.WriteString(formatPlain(el) + "\n")
		}
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func formatPlain(el render.Element) string {
	mark := " "
	if el.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %4d  %s", mark, el.TaskID, el.Text)
}
