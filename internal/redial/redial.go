// Package redial provides the reconnect schedule shared by the bridge's two
// connection loops.
package redial

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	initialDelay = time.Second
	maxDelay     = 15 * time.Second
	growth       = 1.6
)

// New returns the reconnect schedule: a 1s initial delay growing 1.6x per
// failed attempt up to a 15s ceiling, with no jitter. Call Reset after a
// successful connect so the next outage starts the schedule over.
func New() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialDelay
	bo.MaxInterval = maxDelay
	bo.Multiplier = growth
	bo.RandomizationFactor = 0
	bo.Reset()
	return bo
}

// Sleep waits for d or until ctx is canceled, reporting false on cancel.
func Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
