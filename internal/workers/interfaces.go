// Package workers runs the periodic background jobs of the daemon, such as
// scheduled sync runs and export passes, and stops them together.
package workers

import (
	"context"
	"time"
)

// Job is a periodic background task. Start must not block; Stop blocks until
// the job has exited.
type Job interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}
