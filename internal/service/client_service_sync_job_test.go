// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
)

// spyTask counts task calls.
type spyTask struct {
	calls atomic.Int64
	err   error
}

func (s *spyTask) run(_ context.Context) error {
	s.calls.Add(1)
	return s.err
}

func newSpyJob(spy *spyTask) ClientSyncJob {
	return NewClientSyncJob("spy", spy.run, logger.Nop())
}

func TestNewClientSyncJob_ReturnsInterface(t *testing.T) {
	job := newSpyJob(&spyTask{})
	require.NotNil(t, job)
}

func TestClientSyncJob_Start_CallsTask(t *testing.T) {
	spy := &spyTask{}
	job := newSpyJob(spy)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "task should run several times, ran: %d", got)
}

func TestClientSyncJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spyTask{}
	job := newSpyJob(spy)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, callsAfterStop, spy.calls.Load(), "no calls after Stop")
}

func TestClientSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := newSpyJob(&spyTask{})
	assert.NotPanics(t, func() { job.Stop() })
}

func TestClientSyncJob_DoubleStop_NoPanic(t *testing.T) {
	job := newSpyJob(&spyTask{})

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()

	assert.NotPanics(t, func() { job.Stop() })
}

func TestClientSyncJob_Start_DefaultInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{name: "zero", interval: 0},
		{name: "negative", interval: -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyTask{}
			job := newSpyJob(spy)

			job.Start(context.Background(), tt.interval)
			time.Sleep(20 * time.Millisecond)
			job.Stop()

			assert.Equal(t, int64(0), spy.calls.Load(), "default interval is a minute")
		})
	}
}

func TestClientSyncJob_Restart_StopsPrevious(t *testing.T) {
	spy := &spyTask{}
	job := newSpyJob(spy)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	callsBefore := spy.calls.Load()
	assert.Greater(t, callsBefore, int64(0))

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, spy.calls.Load(), callsBefore)
}

func TestClientSyncJob_ContextCancel_StopsJob(t *testing.T) {
	job := newSpyJob(&spyTask{})
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after the parent context was cancelled")
	}
}

func TestClientSyncJob_TaskError_DoesNotStopJob(t *testing.T) {
	spy := &spyTask{err: assert.AnError}
	job := newSpyJob(spy)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	assert.GreaterOrEqual(t, spy.calls.Load(), int64(3))
}
