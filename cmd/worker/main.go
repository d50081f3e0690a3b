package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/library-lending/internal/config"
	"github.com/iliyamo/library-lending/internal/database"
	"github.com/iliyamo/library-lending/internal/fine"
	"github.com/iliyamo/library-lending/internal/lifecycle"
	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/notification"
	"github.com/iliyamo/library-lending/internal/order"
	"github.com/iliyamo/library-lending/internal/queue"
	"github.com/iliyamo/library-lending/internal/repository"
	queue_publisher "github.com/iliyamo/library-lending/internal/service"
)

// main runs the lending background worker: it consumes order status
// events from RabbitMQ and dispatches notifications through the
// decorator pipeline, and periodically flags overdue loans. The HTTP
// surface that produces the events lives in a separate service.
func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("worker: database open failed: %v", err)
	}
	defer db.Close()

	strategy, ok := fine.ByName(cfg.FineStrategy)
	if !ok {
		log.Fatalf("worker: unknown fine strategy: %q", cfg.FineStrategy)
	}

	// Shared sent-cache: Redis when reachable, bounded in-memory otherwise.
	var cache notification.SentCache
	if rdb := config.NewRedisClient(); rdb != nil {
		cache = notification.NewRedisCache(rdb, cfg.NotifyPrefix, cfg.NotifyCacheTTL)
		log.Printf("worker: using redis sent-cache (prefix=%s ttl=%s)", cfg.NotifyPrefix, cfg.NotifyCacheTTL)
	} else {
		cache = notification.NewMemoryCache(cfg.NotifyCacheSize, cfg.NotifyCacheTTL)
		log.Printf("worker: redis unavailable, using in-memory sent-cache (size=%d ttl=%s)", cfg.NotifyCacheSize, cfg.NotifyCacheTTL)
	}

	pipeline := order.NewPipeline(order.PipelineConfig{
		Channel:     cfg.NotifyChannel,
		Logging:     cfg.NotifyLogging,
		Cache:       cache,
		MaxRetries:  cfg.NotifyMaxRetries,
		Backoff:     cfg.NotifyBackoff,
		EmailSender: logSender("email"),
		SMSSender:   logSender("sms"),
	})

	machine := lifecycle.NewMachine(strategy, cfg.BaseFinePerDay)
	svc := order.NewService(
		repository.NewUserRepo(db),
		repository.NewBookInstanceRepo(db),
		repository.NewOrderRepo(db),
		repository.NewOrderAuditRepo(db),
		machine,
		order.Settings{
			ReservationPeriodDays:  cfg.ReservationPeriodDays,
			MaxActiveOrdersPerUser: cfg.MaxActiveOrdersPerUser,
			BaseFinePerDay:         cfg.BaseFinePerDay,
		},
		nil,                          // system clock
		queue_publisher.Dispatcher{}, // overdue notices go through the broker like every other notice
	)
	svc.AddObserver(order.LogObserver{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepOverdue(ctx, svc, cfg.SweepInterval)

	log.Printf("worker: consuming %s (env=%s, strategy=%s, channel=%s)",
		"order.status.changed", cfg.Env, cfg.FineStrategy, cfg.NotifyChannel)
	if err := queue.StartOrderStatusConsumer(ctx, func(ctx context.Context, ev queue.OrderStatusChangedEvent) error {
		return pipeline.Dispatch(ctx, noticeFromEvent(ev))
	}); err != nil && ctx.Err() == nil {
		log.Fatalf("worker: consumer stopped: %v", err)
	}
	log.Print("worker: shut down")
}

// sweepOverdue periodically flags issued orders past their expected
// return date.
func sweepOverdue(ctx context.Context, svc *order.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			flagged, err := svc.SweepOverdue(ctx)
			if err != nil {
				log.Printf("worker: overdue sweep failed: %v", err)
				continue
			}
			if flagged > 0 {
				log.Printf("worker: flagged %d overdue orders", flagged)
			}
		case <-ctx.Done():
			return
		}
	}
}

// noticeFromEvent maps a queue event back onto the pipeline payload.
func noticeFromEvent(ev queue.OrderStatusChangedEvent) order.Notice {
	at, _ := time.Parse(time.RFC3339, ev.ChangedAt)
	return order.Notice{
		OrderID:   ev.OrderID,
		UserID:    ev.UserID,
		Email:     ev.Email,
		Phone:     ev.Phone,
		BookTitle: ev.BookTitle,
		Old:       model.OrderStatus(ev.OldStatus),
		New:       model.OrderStatus(ev.NewStatus),
		Fine:      ev.Fine,
		At:        at,
	}
}

// logSender stands in for the external email/SMS gateways, which are
// configured per deployment. It records the delivery in the process
// log. TODO: wire the SMTP gateway adapter once its credentials land
// in the deployment environment.
func logSender(kind string) notification.Sender {
	return func(_ context.Context, recipient, message string) error {
		log.Printf("worker: %s to %s: %s", kind, recipient, message)
		return nil
	}
}
