package notification

import (
	"context"
	"log"
)

// loggingDecorator writes a before/after trace around Send. It never
// alters the outcome of the wrapped send. Placed outside a retry
// decorator it logs once per attempt cycle, not once per attempt.
type loggingDecorator struct {
	next Notification
}

// WithLogging wraps n so every Send is traced to the process log.
func WithLogging(n Notification) Notification {
	return &loggingDecorator{next: n}
}

func (l *loggingDecorator) Send(ctx context.Context) error {
	log.Printf("notification: sending %s: %s", l.next.Type(), l.next.Message())
	err := l.next.Send(ctx)
	if err != nil {
		log.Printf("notification: %s send failed: %v", l.next.Type(), err)
		return err
	}
	log.Printf("notification: %s sent", l.next.Type())
	return nil
}

func (l *loggingDecorator) Type() string { return l.next.Type() }

func (l *loggingDecorator) Message() string { return l.next.Message() }
