package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned when check never succeeded within the timeout.
var ErrPollTimeout = errors.New("poll timeout")

// Poll calls check immediately and then every interval until it reports done,
// returns an error, the timeout elapses or ctx ends.
func Poll(ctx context.Context, interval, timeout time.Duration, check func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = time.Second
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrPollTimeout
		case <-ticker.C:
		}
	}
}
