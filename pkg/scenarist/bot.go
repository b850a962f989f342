package scenarist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scenarist/internal/stream"
)

const defaultSubscriptionBuffer = 1

// botConfig contains runtime controls for the fan-out engine.
type botConfig struct {
	log       *zap.Logger
	subBuffer int
}

// BotOption mutates bot configuration.
type BotOption func(*botConfig)

// WithLogger configures structured logging for the runtime. The default
// logger discards everything.
func WithLogger(log *zap.Logger) BotOption {
	return func(cfg *botConfig) {
		if log != nil {
			cfg.log = log
		}
	}
}

// WithSubscriptionBuffer configures the per-instance topic buffer. Instances
// interpose an unbounded queue behind the subscription, so the default of 1
// is enough; larger buffers only loosen publisher/instance coupling.
func WithSubscriptionBuffer(buffer int) BotOption {
	return func(cfg *botConfig) {
		if buffer > 0 {
			cfg.subBuffer = buffer
		}
	}
}

// Bot fans one update stream out to many concurrent scenario instances,
// keeping at most one live instance per (scenario, chat) and re-emitting
// every update downstream in source order.
//
// Bot is itself an UpdateSource: Consume drives the engine and forwards the
// unchanged update sequence to the downstream handler, so bots compose with
// further observers.
type Bot struct {
	cfg       botConfig
	source    UpdateSource
	scenarios []Scenario[Unit]
}

// NewBot creates a bot running the given scenarios over the source. The
// scenario set is fixed for the lifetime of the bot.
func NewBot(source UpdateSource, scenarios []Scenario[Unit], options ...BotOption) (*Bot, error) {
	if source == nil {
		return nil, fmt.Errorf("new bot: nil update source")
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("new bot: %w", ErrNoScenarios)
	}
	for idx, sc := range scenarios {
		if sc.n == nil {
			return nil, fmt.Errorf("new bot: scenario %d is a zero value", idx)
		}
	}

	cfg := botConfig{
		log:       zap.NewNop(),
		subBuffer: defaultSubscriptionBuffer,
	}
	for _, option := range options {
		option(&cfg)
	}

	return &Bot{
		cfg:       cfg,
		source:    source,
		scenarios: scenarios,
	}, nil
}

// Run drives the bot until source exhaustion, fatal source error, or context
// cancellation. Cancellation is a clean shutdown, not an error.
func (b *Bot) Run(ctx context.Context) error {
	return b.Consume(ctx, nil)
}

// Consume implements UpdateSource. Each update is published to the live
// instances, then checked as a trigger for new instances, then handed to the
// downstream handler, preserving source order end to end.
func (b *Bot) Consume(ctx context.Context, downstream UpdateHandler) error {
	run := &botRun{
		bot:        b,
		topic:      stream.NewTopic[Update](),
		registries: make([]*chatRegistry, len(b.scenarios)),
	}
	for i := range run.registries {
		run.registries[i] = newChatRegistry()
	}

	err := b.source.Consume(ctx, func(handlerCtx context.Context, update Update) error {
		return run.handleUpdate(handlerCtx, update, downstream)
	})

	// Source is done: end all subscriptions so every instance sees its
	// stream end and falls through, then wait for them.
	run.topic.Close()
	run.instances.Wait()

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// botRun holds the state of one Consume execution.
type botRun struct {
	bot        *Bot
	topic      *stream.Topic[Update]
	registries []*chatRegistry
	instances  sync.WaitGroup
}

// handleUpdate processes one source update in the publisher goroutine.
// Publishing to existing instances strictly precedes trigger evaluation, so
// a new instance never receives its own trigger through the topic; spawning
// strictly precedes the next publish, so a new instance sees every later
// update for its chat.
func (r *botRun) handleUpdate(ctx context.Context, update Update, downstream UpdateHandler) error {
	if err := update.Validate(); err != nil {
		r.bot.cfg.log.Debug("passing through unclassified update", zap.Int64("update_id", update.ID))
	}

	if err := r.topic.Publish(ctx, update); err != nil {
		return fmt.Errorf("publish update %d: %w", update.ID, err)
	}

	if message, ok := Messages(update); ok {
		r.trigger(ctx, update, message)
	}

	if downstream != nil {
		if err := downstream(ctx, update); err != nil {
			return fmt.Errorf("downstream update %d: %w", update.ID, err)
		}
	}

	return nil
}

// trigger starts an instance of every scenario without one live in the
// message's chat.
func (r *botRun) trigger(ctx context.Context, update Update, message *Message) {
	chatID := message.Chat.ID
	for idx := range r.bot.scenarios {
		registry := r.registries[idx]
		if !registry.tryAcquire(chatID) {
			continue
		}

		sub, err := r.topic.Subscribe(r.bot.cfg.subBuffer)
		if err != nil {
			registry.release(chatID)
			continue
		}

		r.instances.Add(1)
		go r.runInstance(ctx, idx, update, chatID, sub, registry)
	}
}

// runInstance drives one scenario instance to completion. The triggering
// update is the first input the scenario sees; everything after comes from
// the instance's own topic subscription, filtered to its chat, through an
// unbounded queue so a slow scenario never stalls the publisher.
func (r *botRun) runInstance(
	ctx context.Context,
	scenarioIdx int,
	trigger Update,
	chatID int64,
	sub *stream.Subscription[Update],
	registry *chatRegistry,
) {
	defer r.instances.Done()
	defer registry.release(chatID)

	log := r.bot.cfg.log.With(
		zap.Int("scenario", scenarioIdx),
		zap.Int64("chat_id", chatID),
		zap.String("instance_id", uuid.NewString()),
	)

	queue := stream.NewQueue[Update]()
	queue.Push(trigger)
	feederDone := make(chan struct{})
	go feedInstance(sub, chatID, queue, feederDone)

	_, out, err := drive(ctx, r.bot.scenarios[scenarioIdx].n, queue.Out())

	sub.Close()
	queue.Stop()
	<-feederDone

	switch out {
	case outcomeValue:
		log.Debug("scenario instance completed")
	case outcomeFellThrough:
		log.Debug("scenario instance fell through")
	case outcomeCancelled:
		log.Debug("scenario instance cancelled")
	case outcomeFailed:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Debug("scenario instance cancelled mid-effect", zap.Error(err))
			break
		}
		log.Error("scenario instance failed", zap.Error(err))
	}
}

// feedInstance moves chat-scoped messages from a topic subscription into the
// instance queue, draining buffered deliveries after the subscription ends.
func feedInstance(sub *stream.Subscription[Update], chatID int64, queue *stream.Queue[Update], done chan<- struct{}) {
	defer close(done)
	defer queue.Close()

	keep := func(u Update) bool {
		message, ok := Messages(u)
		return ok && message.Chat.ID == chatID
	}

	for {
		select {
		case update := <-sub.C():
			if keep(update) {
				queue.Push(update)
			}
		case <-sub.Done():
			for {
				select {
				case update := <-sub.C():
					if keep(update) {
						queue.Push(update)
					}
				default:
					return
				}
			}
		}
	}
}
