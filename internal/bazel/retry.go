// SPDX-License-Identifier: MPL-2.0

package bazel

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Exit codes the build tool uses for conditions that may clear on retry.
const (
	exitLockHeld         = 9
	exitLocalEnvironment = 36
	exitInternalError    = 37
)

// RetryWithBackoff retries op up to maxAttempts times with exponential backoff.
// ctx is checked between attempts so a canceled caller stops immediately.
//
// op returns (retry, err). When retry is false, err is returned as is (nil on
// success). On exhaustion the last error is returned.
func RetryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range max(maxAttempts, 1) {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
			time.Sleep(baseBackoff * time.Duration(1<<(attempt-1)))
		}

		retry, err := op(attempt)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// IsTransientError reports whether err is a build tool failure that may
// succeed on retry. Context errors are never transient.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.ExitCode {
		case exitLockHeld, exitLocalEnvironment, exitInternalError:
			return true
		}
	}
	return false
}
