package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/reputation-service/pkg/kafka"
	"github.com/utafrali/reputation-service/pkg/logger"
)

const dispatchTimeout = 5 * time.Second

// publisher is satisfied by kafka.Producer.
type publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Dispatcher queues push jobs whenever a reviewee's reputation changes.
// Dispatch never blocks the caller and never surfaces queue failures to it.
type Dispatcher struct {
	producer      publisher
	urls          []string
	credentialRef string
	logger        *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher for the configured subscriber URLs.
// With no URLs configured every Dispatch is dropped with a warning.
func NewDispatcher(producer publisher, urls []string, credentialRef string, l *slog.Logger) *Dispatcher {
	return &Dispatcher{
		producer:      producer,
		urls:          urls,
		credentialRef: credentialRef,
		logger:        l,
	}
}

// Dispatch queues a push job for the reviewee in the background. The write
// that triggered it has already committed, so failures here are logged and
// the caller's response is unaffected.
func (d *Dispatcher) Dispatch(ctx context.Context, revieweeID string) {
	if len(d.urls) == 0 {
		d.logger.WarnContext(ctx, "push dispatch skipped, no subscriber urls configured",
			slog.String("reviewee_id", revieweeID))
		return
	}

	correlationID := logger.CorrelationIDFromContext(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		job := PushJob{
			RevieweeID:    revieweeID,
			URLs:          d.urls,
			CredentialRef: d.credentialRef,
		}

		evt, err := kafka.NewEvent(TypePushRequested, revieweeID, AggregateTypeReputation, Source, job)
		if err != nil {
			d.logger.Error("build push event", slog.String("reviewee_id", revieweeID), slog.Any("error", err))
			return
		}
		if correlationID != "" {
			evt = evt.WithCorrelationID(correlationID)
		}

		if err := d.producer.Publish(ctx, TopicPushRequested, evt); err != nil {
			d.logger.Error("publish push event",
				slog.String("reviewee_id", revieweeID),
				slog.String("topic", TopicPushRequested),
				slog.Any("error", err))
		}
	}()
}

// Wait blocks until in-flight dispatches finish, used on shutdown and in
// tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
