// Package history defines the recently opened files list.
package history

import (
	"context"
	"time"
)

// Entry records one successfully loaded file.
type Entry struct {
	Path     string    `json:"path"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	OpenedAt time.Time `json:"opened_at"`
}

// Store persists recent entries, newest first. Recording a path that is
// already present moves it to the front.
type Store interface {
	List(ctx context.Context) ([]Entry, error)
	Record(ctx context.Context, entry Entry, maxEntries int) error
	Forget(ctx context.Context, path string) error
	Clear(ctx context.Context) error
}

// Paths returns the entry paths in order.
func Paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
