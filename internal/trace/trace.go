// Package trace carries a per-run ID in the context so every log line
// of one analysis run can be grepped together.
package trace

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

type ctxKey int

const runIDKey ctxKey = 0

// NewRunID returns a short unique ID for one analysis run
func NewRunID() string {
	return uuid.NewString()[:8]
}

// WithRunID attaches a run ID to the context
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunID returns the run ID from the context, or "" if none is set
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

var logMu sync.Mutex

// Logf writes one log line prefixed with the context's run ID
func Logf(ctx context.Context, format string, args ...interface{}) {
	id := RunID(ctx)
	if id == "" {
		id = "-"
	}
	logMu.Lock()
	log.Printf("run=%s %s", id, fmt.Sprintf(format, args...))
	logMu.Unlock()
}
