// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

// fakeJob records lifecycle calls into a shared log.
type fakeJob struct {
	name     string
	log      *[]string
	interval time.Duration
}

func (f *fakeJob) Start(_ context.Context, interval time.Duration) {
	f.interval = interval
	*f.log = append(*f.log, "start "+f.name)
}

func (f *fakeJob) Stop() {
	*f.log = append(*f.log, "stop "+f.name)
}

func TestWorkers_StartAndStopOrder(t *testing.T) {
	var calls []string
	sync := &fakeJob{name: "sync", log: &calls}
	export := &fakeJob{name: "export", log: &calls}

	w := NewWorkers(logger.Nop()).
		Add("sync", sync, time.Minute).
		Add("export", export, 5*time.Minute)

	w.Start(context.Background())
	w.Stop()

	assert.Equal(t, []string{"start sync", "start export", "stop export", "stop sync"}, calls)
	assert.Equal(t, time.Minute, sync.interval)
	assert.Equal(t, 5*time.Minute, export.interval)
}

func TestWorkers_StartIsIdempotent(t *testing.T) {
	var calls []string
	w := NewWorkers(logger.Nop()).Add("sync", &fakeJob{name: "sync", log: &calls}, time.Second)

	w.Start(context.Background())
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	assert.Equal(t, []string{"start sync", "stop sync"}, calls)
}

func TestWorkers_NilJobIsIgnored(t *testing.T) {
	var missing Job
	w := NewWorkers(logger.Nop()).Add("export", missing, time.Second)

	assert.Zero(t, w.Len())
	assert.NotPanics(t, func() {
		w.Start(context.Background())
		w.Stop()
	})
}

func TestWorkers_NilReceiver(t *testing.T) {
	var w *Workers

	assert.Zero(t, w.Len())
	assert.NotPanics(t, func() {
		w.Start(context.Background())
		w.Stop()
	})
}
