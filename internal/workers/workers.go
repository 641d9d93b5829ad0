package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

type scheduledJob struct {
	name     string
	job      Job
	interval time.Duration
}

// Workers is the set of jobs started and stopped together.
type Workers struct {
	mu      sync.Mutex
	jobs    []scheduledJob
	started bool

	logger *logger.Logger
}

func NewWorkers(logger *logger.Logger) *Workers {
	return &Workers{logger: logger}
}

// Add registers a job. A nil job is ignored so that optional jobs can be
// added unconditionally.
func (w *Workers) Add(name string, job Job, interval time.Duration) *Workers {
	if job == nil {
		return w
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs = append(w.jobs, scheduledJob{name: name, job: job, interval: interval})
	return w
}

func (w *Workers) Len() int {
	if w == nil {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.jobs)
}

// Start launches every job. Calling Start on running workers does nothing.
func (w *Workers) Start(ctx context.Context) {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	for _, j := range w.jobs {
		w.logger.Info().Str("worker", j.name).Dur("interval", j.interval).Msg("starting worker")
		j.job.Start(ctx, j.interval)
	}
}

// Stop stops the jobs in reverse start order and waits for each of them.
func (w *Workers) Stop() {
	if w == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false

	for i := len(w.jobs) - 1; i >= 0; i-- {
		w.jobs[i].job.Stop()
		w.logger.Info().Str("worker", w.jobs[i].name).Msg("worker stopped")
	}
}
