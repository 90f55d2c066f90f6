package http

import (
	"context"
	"errors"
	"time"
)

// DownloadFunc is the signature for a download attempt.
type DownloadFunc func(ctx context.Context, url string) ([]byte, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for download retries: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// DownloadWithRetry calls download once plus once per delay until it
// succeeds, sleeping the given delay between attempts. A *StatusError that
// is not temporary ends the attempts early.
func DownloadWithRetry(ctx context.Context, url string, download DownloadFunc, logger LogFunc, delays []time.Duration) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			if logger != nil {
				logger("retry %s (attempt %d): %v", url, attempt+1, lastErr)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		data, err := download(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			break
		}
	}
	return nil, lastErr
}
