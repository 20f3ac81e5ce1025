package machina

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobStatusPending, false},
		{JobStatusRunning, false},
		{JobStatusCompleted, true},
		{JobStatusFailed, true},
		{JobStatusCancelled, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.IsTerminal(), "status %q", tt.status)
	}
}

func TestEnqueueOptions(t *testing.T) {
	job := &Job{}

	WithPriority(5)(job)
	assert.Equal(t, 5, job.Priority)

	WithMaxAttempts(10)(job)
	assert.Equal(t, 10, job.MaxAttempts)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	WithScheduledAt(at)(job)
	assert.Equal(t, at, job.ScheduledAt)

	WithDelay(time.Hour)(job)
	assert.WithinDuration(t, time.Now().Add(time.Hour), job.ScheduledAt, time.Minute)
}

func TestDefaultQueueConfig(t *testing.T) {
	cfg := DefaultQueueConfig()
	assert.Greater(t, cfg.WorkerCount, 0)
	assert.Greater(t, cfg.PollInterval, time.Duration(0))
	assert.Greater(t, cfg.JobTimeout, time.Duration(0))
}
