package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/notification"
)

func notice() Notice {
	return Notice{
		OrderID:   12,
		UserID:    7,
		Email:     "r@example.com",
		Phone:     "+100",
		BookTitle: "Dead Souls",
		Old:       model.OrderIssued,
		New:       model.OrderReturned,
		At:        time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderMessage(t *testing.T) {
	n := notice()
	assert.Equal(t, "Order #12 (Dead Souls): status changed ISSUED -> RETURNED.", RenderMessage(n))

	n.Fine = 1500
	assert.Contains(t, RenderMessage(n), "Overdue fine due: 1500.00.")

	created := Notice{OrderID: 12, New: model.OrderCreated}
	assert.Equal(t, "Your order #12 has been created and is awaiting pickup.", RenderMessage(created))
}

func TestPipelineSelectsChannel(t *testing.T) {
	var emailTo, smsTo string
	p := NewPipeline(PipelineConfig{
		Channel:    "SMS",
		MaxRetries: 1,
		EmailSender: func(_ context.Context, recipient, _ string) error {
			emailTo = recipient
			return nil
		},
		SMSSender: func(_ context.Context, recipient, _ string) error {
			smsTo = recipient
			return nil
		},
	})

	require.NoError(t, p.Dispatch(context.Background(), notice()))
	assert.Empty(t, emailTo)
	assert.Equal(t, "+100", smsTo)
}

func TestPipelineSuppressesDuplicates(t *testing.T) {
	sends := 0
	p := NewPipeline(PipelineConfig{
		Channel:    "EMAIL",
		Cache:      notification.NewMemoryCache(16, time.Minute),
		MaxRetries: 3,
		Backoff:    time.Millisecond,
		EmailSender: func(_ context.Context, _, _ string) error {
			sends++
			return nil
		},
	})

	require.NoError(t, p.Dispatch(context.Background(), notice()))
	require.NoError(t, p.Dispatch(context.Background(), notice()))
	assert.Equal(t, 1, sends)
}
