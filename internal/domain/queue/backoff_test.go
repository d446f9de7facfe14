package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: 2 * time.Second, Max: 5 * time.Minute}

	assert.Equal(t, time.Duration(0), b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(3))
	assert.Equal(t, 256*time.Second, b.Delay(8))
	assert.Equal(t, 5*time.Minute, b.Delay(9))
	assert.Equal(t, 5*time.Minute, b.Delay(50))
}

func TestBackoffNextAttemptAt(t *testing.T) {
	b := Backoff{Base: 2 * time.Second, Max: 5 * time.Minute}
	created := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	rec := &QueuedReport{CreatedAt: created}
	assert.Equal(t, created, b.NextAttemptAt(rec))

	last := created.Add(time.Minute)
	rec.LastAttemptAt = &last
	rec.AttemptCount = 2
	assert.Equal(t, last.Add(4*time.Second), b.NextAttemptAt(rec))
}
