package geektime

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/geektime-grabber/internal/logger"
)

// callWithRetry runs one API call under the uniform retry policy.
// A business rejection (*APIError) propagates immediately. A transport
// failure waits briefly, refreshes the session, and replays the call exactly
// once, with a second failure propagating untouched. Any other error is
// wrapped into *APIError so callers only ever see the two documented kinds.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func callWithRetry[T any](c *ClientImpl, ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	result, err := call(ctx)
	if err == nil {
		return result, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return result, err
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		var zero T

		return zero, &APIError{Message: err.Error(), Err: err}
	}

	logger.Warnf(ctx, "Request failed, replaying once after relogin: %v", err)
	time.Sleep(transportRetryPause)

	if !c.cfg.NoLogin {
		if err = c.ResetSession(ctx); err != nil {
			var zero T

			return zero, err
		}
	}

	return call(ctx)
}
