package queue

import (
	"time"
)

// Backoff computes the delay before the next automatic retry. The delay is
// Base doubled per prior attempt, capped at Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait after the given number of completed attempts.
// Delay(1) == Base, Delay(2) == 2*Base, and so on up to Max.
func (b Backoff) Delay(attempts int) time.Duration {
	if attempts < 1 {
		return 0
	}
	d := b.Base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}

// NextAttemptAt returns the earliest time the automatic scheduler may retry
// the record. Records that never attempted are due immediately.
func (b Backoff) NextAttemptAt(rec *QueuedReport) time.Time {
	if rec.LastAttemptAt == nil {
		return rec.CreatedAt
	}
	return rec.LastAttemptAt.Add(b.Delay(rec.AttemptCount))
}
