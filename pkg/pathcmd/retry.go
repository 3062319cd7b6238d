package pathcmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/paulschiretz/pgl-mirror/pkg/metrics"
)

const (
	// retryAttempts is the total number of tries, first attempt
	// included.
	retryAttempts = 5
	// retryBaseDelay is the backoff base: the wait after failed attempt
	// n is retryBaseDelay * 2^(n-1).
	retryBaseDelay = 200 * time.Millisecond
)

// retryable classifies errors worth retrying: transient I/O-class and
// permission-class failures. Cancellation and logical failures
// propagate immediately.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	var sysErr *os.SyscallError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr) || errors.As(err, &sysErr)
}

// withRetry runs fn up to retryAttempts times, backing off exponentially
// between tries. Cancellation is observed before every attempt and
// during every wait, and is never retried. After exhaustion the last
// observed cause is returned wrapped.
func withRetry(ctx context.Context, log *slog.Logger, m metrics.Metrics, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == retryAttempts {
			break
		}

		delay := retryBaseDelay << (attempt - 1)
		m.AddRetries(1)
		log.Warn("retrying operation", "op", op, "attempt", fmt.Sprintf("%d/%d", attempt, retryAttempts), "after", delay, "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, retryAttempts, lastErr)
}
