package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies session_id and source from the event context onto the
// event.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (h ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := GetSessionID(ctx); id != "" {
		e.Str("session_id", id)
	}
	if src := GetSource(ctx); src != "" {
		e.Str("source", src)
	}
}
