package notification

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DeliveryError reports that a notification could not be delivered
// after exhausting every retry attempt.
type DeliveryError struct {
	Type     string // channel type that failed
	Attempts int    // number of attempts made
	Err      error  // last underlying send error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s notification not delivered after %d attempts: %v", e.Type, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// retryDecorator re-attempts a failing send up to maxRetries times,
// sleeping a fixed backoff between attempts. The wait observes ctx:
// cancellation during the backoff aborts immediately with the context
// error rather than being swallowed. Note the caller blocks for up to
// maxRetries * backoff; run dispatch on a worker when that is not
// acceptable.
type retryDecorator struct {
	next       Notification
	maxRetries int
	backoff    time.Duration
}

// WithRetry wraps n with up to maxRetries delivery attempts spaced by
// backoff. A non-positive backoff defaults to one second, matching
// the historical behavior of the dispatch path.
func WithRetry(n Notification, maxRetries int, backoff time.Duration) Notification {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &retryDecorator{next: n, maxRetries: maxRetries, backoff: backoff}
}

func (r *retryDecorator) Send(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		lastErr = r.next.Send(ctx)
		if lastErr == nil {
			return nil
		}
		log.Printf("notification: %s attempt %d/%d failed: %v", r.next.Type(), attempt, r.maxRetries, lastErr)
		if attempt == r.maxRetries {
			break
		}
		select {
		case <-time.After(r.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return &DeliveryError{Type: r.next.Type(), Attempts: r.maxRetries, Err: lastErr}
}

func (r *retryDecorator) Type() string { return r.next.Type() }

func (r *retryDecorator) Message() string { return r.next.Message() }
