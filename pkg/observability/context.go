package observability

import "context"

// JobIDKey is the log attribute key for the current job identifier.
const JobIDKey = "job_id"

type jobIDContextKey struct{}

// WithJobID returns a context carrying the given job identifier.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDContextKey{}, jobID)
}

// JobIDFromContext returns the job identifier carried by the context,
// or the empty string when none is set.
func JobIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(jobIDContextKey{}).(string); ok {
		return id
	}
	return ""
}
