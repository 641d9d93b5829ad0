package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

const defaultJobInterval = time.Minute

// JobTask is one tick of a periodic job.
type JobTask func(ctx context.Context) error

type clientSyncJob struct {
	name   string
	task   JobTask
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a job that calls task on a ticker. The job is idle
// until Start is called.
func NewClientSyncJob(name string, task JobTask, log *logger.Logger) ClientSyncJob {
	return &clientSyncJob{name: name, task: task, logger: log}
}

// NewSyncAllJob runs SyncAll on every tick.
func NewSyncAllJob(coordinator SyncCoordinator, log *logger.Logger) ClientSyncJob {
	return NewClientSyncJob("sync", coordinator.SyncAll, log)
}

// NewExportJob runs ExportAll on every tick.
func NewExportJob(exporter ExportService, log *logger.Logger) ClientSyncJob {
	return NewClientSyncJob("export", exporter.ExportAll, log)
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine that calls the task every interval. The
// goroutine exits when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultJobInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	log := j.logger.With().Str("job", j.name).Logger()
	log.Info().Dur("interval", interval).Msg("job started")

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				log.Info().Msg("job stopped")
				return
			case <-t.C:
				if err := j.task(jobCtx); err != nil && jobCtx.Err() == nil {
					log.Warn().Err(err).Msg("job tick failed")
				}
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
