package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"scenarist/pkg/scenarist"
)

// Poller is the long-poll update source. It maintains the getUpdates offset
// so that no update is ever emitted twice: the offset advances only after a
// whole batch has been handed to the handler.
type Poller struct {
	client *Client
	cfg    Config
	log    *zap.Logger
}

// NewPoller creates a polling update source over the client.
func NewPoller(client *Client, cfg Config, log *zap.Logger) (*Poller, error) {
	if client == nil {
		return nil, fmt.Errorf("new poller: nil client")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new poller: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Poller{client: client, cfg: cfg, log: log}, nil
}

// Consume implements scenarist.UpdateSource. It loops getUpdates forever,
// retrying transport failures with jittered exponential backoff and treating
// API-level failures as fatal. Cancelling the context aborts the in-flight
// request promptly; no partial batch is emitted.
func (p *Poller) Consume(ctx context.Context, handler scenarist.UpdateHandler) error {
	if handler == nil {
		return fmt.Errorf("poller: nil handler")
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = p.cfg.BackoffBase
	retry.MaxInterval = p.cfg.BackoffCap
	retry.MaxElapsedTime = 0
	retry.Reset()

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := Execute(ctx, p.client, GetUpdates, GetUpdatesRequest{
			Offset:         offset,
			Limit:          p.cfg.PollingLimit,
			TimeoutSeconds: int(p.cfg.PollingTimeout / time.Second),
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			if errors.Is(err, ErrTransport) {
				if sleepErr := p.sleep(ctx, retry.NextBackOff(), err); sleepErr != nil {
					return sleepErr
				}

				continue
			}

			return fmt.Errorf("poll updates at offset %d: %w", offset, err)
		}
		retry.Reset()

		for _, update := range batch {
			if err := handler(ctx, update); err != nil {
				return fmt.Errorf("handle update %d: %w", update.ID, err)
			}
		}
		if len(batch) > 0 {
			offset = batch[len(batch)-1].ID + 1
		}
	}
}

// sleep waits out one backoff interval unless the context ends first.
func (p *Poller) sleep(ctx context.Context, delay time.Duration, cause error) error {
	p.log.Warn("transport failure polling updates, backing off",
		zap.Duration("delay", delay),
		zap.Error(cause),
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
