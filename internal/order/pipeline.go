package order

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/notification"
)

// Notice is the rendered payload of one lifecycle notification. Old is
// empty when the notice announces a freshly created order.
type Notice struct {
	OrderID   uint64
	UserID    uint64
	Email     string
	Phone     string
	BookTitle string
	Old       model.OrderStatus
	New       model.OrderStatus
	Fine      float64
	At        time.Time
}

// Dispatcher delivers a notice to the reader. Implementations include
// the in-process decorator pipeline below and the queue publisher that
// hands dispatch to the background worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notice) error
}

// PipelineConfig selects the channel and the decorator chain for the
// dispatch pipeline. The chain is assembled outside-in as
// logging(caching(retry(channel))): a cached duplicate is suppressed
// before any retry runs, and logging traces one line per dispatch
// cycle rather than per attempt. Callers wanting different behavior
// compose the notification decorators directly.
type PipelineConfig struct {
	Channel     string                 // "EMAIL" or "SMS"
	Logging     bool                   // wrap with the logging decorator
	Cache       notification.SentCache // nil disables de-duplication
	MaxRetries  int                    // delivery attempts, min 1
	Backoff     time.Duration          // pause between attempts, default 1s
	EmailSender notification.Sender    // transport for the email channel
	SMSSender   notification.Sender    // transport for the SMS channel
}

// Pipeline is a Dispatcher sending each notice through a freshly
// wrapped channel. The sent-cache is owned by whoever built the
// config, giving it an explicit scope and lifetime.
type Pipeline struct {
	cfg PipelineConfig
}

// NewPipeline returns a pipeline for cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) Dispatch(ctx context.Context, n Notice) error {
	recipient := n.Email
	sender := p.cfg.EmailSender
	if p.cfg.Channel == "SMS" {
		recipient = n.Phone
		sender = p.cfg.SMSSender
	}
	base, err := notification.New(p.cfg.Channel, recipient, "Library notification", RenderMessage(n), sender)
	if err != nil {
		return err
	}

	wrapped := notification.WithRetry(base, p.cfg.MaxRetries, p.cfg.Backoff)
	if p.cfg.Cache != nil {
		wrapped = notification.WithCaching(wrapped, p.cfg.Cache)
	}
	if p.cfg.Logging {
		wrapped = notification.WithLogging(wrapped)
	}
	return wrapped.Send(ctx)
}

// RenderMessage produces the reader-facing text for a notice. The
// fine, when owed, is embedded in the message rather than persisted
// anywhere.
func RenderMessage(n Notice) string {
	var msg string
	switch {
	case n.Old == "":
		msg = fmt.Sprintf("Your order #%d has been created and is awaiting pickup.", n.OrderID)
	case n.BookTitle != "":
		msg = fmt.Sprintf("Order #%d (%s): status changed %s -> %s.", n.OrderID, n.BookTitle, n.Old, n.New)
	default:
		msg = fmt.Sprintf("Order #%d: status changed %s -> %s.", n.OrderID, n.Old, n.New)
	}
	if n.Fine > 0 {
		msg += fmt.Sprintf(" Overdue fine due: %.2f.", n.Fine)
	}
	return msg
}
