// Package columns tracks the ordered set of column headers and which of
// them are currently visible.
//
// The model is the source of truth for visibility. Presentation code renders
// from Flags and reports selections back through ApplyVisibility; it never
// needs to read widget state.
package columns

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateHeader is returned when adding a header that already exists.
	ErrDuplicateHeader = errors.New("duplicate header")
	// ErrEmptyHeader is returned when adding an empty header.
	ErrEmptyHeader = errors.New("header cannot be empty")
)

// Model holds every header in insertion order plus a visible flag per header.
// visible ⊆ all always holds: flags exist only for headers in all.
type Model struct {
	all     []string
	visible map[string]bool
}

// New creates a model with every header visible. Duplicate names are made
// unique, see Reset.
func New(headers []string) *Model {
	m := &Model{}
	m.Reset(headers)
	return m
}

// Reset replaces the header list, marking every header visible. Repeated
// names in headers are disambiguated with a " (n)" suffix so that each
// column keeps a distinct, addressable name.
func (m *Model) Reset(headers []string) {
	m.all = make([]string, 0, len(headers))
	m.visible = make(map[string]bool, len(headers))
	for _, h := range headers {
		name := m.uniqueName(h)
		m.all = append(m.all, name)
		m.visible[name] = true
	}
}

// UniqueName returns h, or h with the smallest " (n)" suffix that is not
// already taken.
func (m *Model) UniqueName(h string) string {
	return m.uniqueName(h)
}

func (m *Model) uniqueName(h string) string {
	if _, taken := m.visible[h]; !taken {
		return h
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", h, n)
		if _, taken := m.visible[candidate]; !taken {
			return candidate
		}
	}
}

// Len returns the number of headers.
func (m *Model) Len() int { return len(m.all) }

// All returns every header in insertion order.
func (m *Model) All() []string { return slices.Clone(m.all) }

// Visible returns the visible headers in insertion order.
func (m *Model) Visible() []string {
	out := make([]string, 0, len(m.all))
	for _, h := range m.all {
		if m.visible[h] {
			out = append(out, h)
		}
	}
	return out
}

// VisibleIndices returns the positions in All of the visible headers.
func (m *Model) VisibleIndices() []int {
	out := make([]int, 0, len(m.all))
	for i, h := range m.all {
		if m.visible[h] {
			out = append(out, i)
		}
	}
	return out
}

// IsVisible reports whether h exists and is visible.
func (m *Model) IsVisible(h string) bool { return m.visible[h] }

// Has reports whether h is a known header.
func (m *Model) Has(h string) bool {
	_, ok := m.visible[h]
	return ok
}

// Index returns the position of h in All, or -1.
func (m *Model) Index(h string) int { return slices.Index(m.all, h) }

// Header returns the header at position i, or "" when out of range.
func (m *Model) Header(i int) string {
	if i < 0 || i >= len(m.all) {
		return ""
	}
	return m.all[i]
}

// Flags returns a copy of the header to visible mapping.
func (m *Model) Flags() map[string]bool {
	out := make(map[string]bool, len(m.visible))
	for k, v := range m.visible {
		out[k] = v
	}
	return out
}

// ApplyVisibility makes exactly the headers in selected ∩ All visible and
// reports whether the visible set changed. Unknown names are ignored.
func (m *Model) ApplyVisibility(selected []string) bool {
	want := make(map[string]bool, len(selected))
	for _, h := range selected {
		want[h] = true
	}

	changed := false
	for _, h := range m.all {
		v := want[h]
		if m.visible[h] != v {
			m.visible[h] = v
			changed = true
		}
	}
	return changed
}

// OnColumnAdded appends h as a visible header.
func (m *Model) OnColumnAdded(h string) error {
	if h == "" {
		return ErrEmptyHeader
	}
	if m.Has(h) {
		return fmt.Errorf("%w: %q", ErrDuplicateHeader, h)
	}
	m.all = append(m.all, h)
	m.visible[h] = true
	return nil
}

// OnColumnDeleted removes h from the model. Removing an unknown header is a
// no-op.
func (m *Model) OnColumnDeleted(h string) {
	i := m.Index(h)
	if i < 0 {
		return
	}
	m.all = slices.Delete(m.all, i, i+1)
	delete(m.visible, h)
}
