package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultPollInterval is used when a wait is given a non-positive interval.
const DefaultPollInterval = 100 * time.Millisecond

var errNotYet = errors.New("condition not met")

// Poll calls condition every interval until it returns true, returns an error,
// or timeout elapses. Expiry yields ErrTimeout; condition errors abort the wait
// and are returned unchanged. A non-positive timeout checks the condition once.
func Poll(timeout, interval time.Duration, condition func() (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		ok, err := condition()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: condition not met on single check", ErrTimeout)
		}
		return nil
	}

	_, err := backoff.Retry(context.Background(), func() (struct{}, error) {
		ok, err := condition()
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if !ok {
			return struct{}{}, errNotYet
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxElapsedTime(timeout),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, errNotYet) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return err
}
