package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	sourceKey    contextKey = "source"
)

// WithSessionID tags the context with the ID of an editing session. A new ID
// is minted every time a file is opened.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithSource tags the context with the file being edited.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// GetSessionID returns the session ID in ctx, or "".
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetSource returns the source path in ctx, or "".
func GetSource(ctx context.Context) string {
	if src, ok := ctx.Value(sourceKey).(string); ok {
		return src
	}
	return ""
}
