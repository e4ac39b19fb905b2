package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/reputation-service/internal/domain"
	"github.com/utafrali/reputation-service/internal/push"
	"github.com/utafrali/reputation-service/pkg/errors"
	"github.com/utafrali/reputation-service/pkg/kafka"
)

// Snapshotter recomputes the current aggregate for a reviewee.
type Snapshotter interface {
	Snapshot(ctx context.Context, reviewee string) (domain.Snapshot, error)
}

// Pusher fans a payload out to subscriber URLs.
type Pusher interface {
	Push(ctx context.Context, payload push.Payload, urls []string) []push.Outcome
}

// NewPushHandler builds the worker's Kafka handler. The snapshot is always
// recomputed at delivery time, never taken from the job, so bursts of jobs
// for one reviewee each deliver the latest aggregate. deliverers maps
// credential references to the pusher signing with that credential.
func NewPushHandler(snapshots Snapshotter, deliverers map[string]Pusher, logger *slog.Logger) kafka.Handler {
	return func(ctx context.Context, evt *kafka.Event) error {
		if evt.EventType != TypePushRequested {
			logger.Debug("ignoring event", slog.String("event_type", evt.EventType))
			return nil
		}

		var job PushJob
		if err := evt.UnmarshalData(&job); err != nil {
			logger.Error("undecodable push job",
				slog.String("event_id", evt.EventID), slog.Any("error", err))
			return nil
		}

		deliverer, ok := deliverers[job.CredentialRef]
		if !ok {
			logger.Error("push job references unknown credential",
				slog.String("event_id", evt.EventID),
				slog.String("credential_ref", job.CredentialRef))
			return nil
		}

		snap, err := snapshots.Snapshot(ctx, job.RevieweeID)
		if err != nil {
			// A malformed reviewee id can never succeed; retrying it
			// would just poison the partition.
			if errors.Is(err, errors.ErrInvalidInput) {
				logger.Error("push job for invalid reviewee",
					slog.String("reviewee_id", job.RevieweeID))
				return nil
			}
			return err
		}

		outcomes := deliverer.Push(ctx, push.NewPayload(snap), job.URLs)
		for _, o := range outcomes {
			logger.Info("push delivery finished",
				slog.String("reviewee_id", job.RevieweeID),
				slog.String("url", o.URL),
				slog.String("state", string(o.State)),
				slog.Int("attempts", o.Attempts))
		}

		return nil
	}
}
