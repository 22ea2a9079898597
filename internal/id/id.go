// Package id hands out run identifiers for transcode runs and carries them
// through a context so log lines of one run can be correlated.
package id

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type ctxKey struct{}

// New returns a ULID string. ULIDs sort by creation time; ulid.Make uses a
// process-wide monotonic entropy source and is safe for concurrent use.
func New() string {
	return ulid.Make().String()
}

// WithRun stores a run id in ctx.
func WithRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, runID)
}

// FromContext returns the run id stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}
