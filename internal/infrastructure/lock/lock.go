// Package lock provides the bill lock that serializes free-issue bills.
package lock

import (
	"errors"
	"time"
)

// ErrNotHeld is returned when releasing a lock that has expired or was taken over
var ErrNotHeld = errors.New("lock not held")

// Options controls how long Obtain keeps retrying a busy lock
type Options struct {
	// Wait is the total time Obtain may spend retrying. Zero means a single attempt.
	Wait time.Duration
	// RetryInterval is the pause between attempts.
	RetryInterval time.Duration
}

// DefaultOptions returns the default retry settings
func DefaultOptions() Options {
	return Options{
		Wait:          5 * time.Second,
		RetryInterval: 100 * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultOptions().RetryInterval
	}
	if o.Wait < 0 {
		o.Wait = 0
	}
	return o
}

// retries returns how many extra attempts fit into Wait
func (o Options) retries() int {
	if o.Wait <= 0 {
		return 0
	}
	return int(o.Wait / o.RetryInterval)
}
