// Package async runs parse requests in the background so callers can
// trigger a parse without waiting for it.
package async

import (
	"context"
	"time"
)

// Job asks for one document to be parsed on behalf of CallerUID.
type Job struct {
	DocumentID  string
	CallerUID   string
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
