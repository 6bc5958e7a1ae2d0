package sync

import "time"

// BackoffPolicy is the per-item retry delay: linear in the item's own
// failure count. The job-level retry of the periodic scheduler is exponential
// and separate (see scheduler.RetryPolicy).
type BackoffPolicy struct {
	Base time.Duration
}

// Delay returns the wait before the next attempt of an item that has failed
// retryCount times so far. Grows strictly with each failure.
func (p BackoffPolicy) Delay(retryCount int) time.Duration {
	base := p.Base
	if base <= 0 {
		base = time.Second
	}
	if retryCount < 0 {
		retryCount = 0
	}
	return base * time.Duration(retryCount+1)
}
