package scenarist

import (
	"context"
	"fmt"
)

// UpdateHandler consumes one decoded update.
type UpdateHandler func(ctx context.Context, update Update) error

// UpdateSource streams updates into the runtime.
type UpdateSource interface {
	// Consume runs the update loop until context cancellation, source
	// exhaustion (nil return), or fatal error. Updates are handed to the
	// handler one at a time, in source order.
	Consume(ctx context.Context, handler UpdateHandler) error
}

// ChannelSource reads updates from a channel. It backs tests and push-style
// receivers such as the webhook listener.
type ChannelSource struct {
	// Updates is the owned input stream consumed by the source loop.
	Updates <-chan Update
}

// Consume forwards channel updates until closure or cancellation.
func (s ChannelSource) Consume(ctx context.Context, handler UpdateHandler) error {
	if handler == nil {
		return fmt.Errorf("channel source: nil handler")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-s.Updates:
			if !ok {
				return nil
			}
			if err := handler(ctx, update); err != nil {
				return fmt.Errorf("channel source handle update %d: %w", update.ID, err)
			}
		}
	}
}
