package render

import (
	"strings"
	"sync"
)

// ListView is an in-memory View safe for concurrent use. Surfaces render
// from its snapshots while handlers mutate it from other goroutines.
type ListView struct {
	mu          sync.Mutex
	items       []Element
	placeholder string
	version     uint64
}

// NewListView returns an empty list view.
func NewListView() *ListView {
	return &ListView{}
}

// Clear implements View.
func (v *ListView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = nil
	v.placeholder = ""
	v.version++
}

// Append implements View.
func (v *ListView) Append(el Element) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholder = ""
	v.items = append(v.items, el)
	v.version++
}

// Remove implements View.
func (v *ListView) Remove(taskID int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.items {
		if v.items[i].TaskID == taskID {
			v.items = append(v.items[:i:i], v.items[i+1:]...)
			v.version++
			return true
		}
	}
	return false
}

// ShowPlaceholder implements View.
func (v *ListView) ShowPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = nil
	v.placeholder = text
	v.version++
}

// Items returns a copy of the current elements.
func (v *ListView) Items() []Element {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Element, len(v.items))
	copy(out, v.items)
	return out
}

// Placeholder returns the placeholder text, or "" when the list is shown.
func (v *ListView) Placeholder() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.placeholder
}

// Len returns the number of elements.
func (v *ListView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}

// Find returns the element for the task id.
func (v *ListView) Find(taskID int) (Element, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, el := range v.items {
		if el.TaskID == taskID {
			return el, true
		}
	}
	return Element{}, false
}

// Version increases on every mutation.
func (v *ListView) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Text returns the concatenated visible text of the list, like a DOM
// container's textContent.
func (v *ListView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.placeholder != "" {
		return v.placeholder
	}
	var b strings.Builder
	for _, el := range v.items {
		b.WriteString(el.Text)
		b.WriteString(el.Delete.Label)
	}
	return b.String()
}
