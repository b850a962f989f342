package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"scenarist/pkg/scenarist"
	"scenarist/pkg/telegram"
)

func run() error {
	// Optional .env for local development; the environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := telegram.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := telegram.NewClient(cfg.Token,
		telegram.WithBaseURL(cfg.BaseURL),
		telegram.WithClientLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	poller, err := telegram.NewPoller(client, cfg, logger)
	if err != nil {
		return fmt.Errorf("build poller: %w", err)
	}

	bot, err := scenarist.NewBot(poller, []scenarist.Scenario[scenarist.Unit]{
		greeting(client),
		echo(client),
	}, scenarist.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("build bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot starting", zap.Duration("polling_timeout", cfg.PollingTimeout))
	if err := bot.Run(ctx); err != nil {
		return fmt.Errorf("run bot: %w", err)
	}
	logger.Info("bot stopped")

	return nil
}

// greeting asks for a name after /hi and greets the answer.
func greeting(client *telegram.Client) scenarist.Scenario[scenarist.Unit] {
	send := func(chatID int64, text string) scenarist.Scenario[scenarist.Unit] {
		return scenarist.Exec(func(ctx context.Context) error {
			_, err := client.SendText(ctx, chatID, text)
			return err
		})
	}

	return scenarist.Bind(scenarist.Start(scenarist.Command("hi")), func(m *scenarist.Message) scenarist.Scenario[scenarist.Unit] {
		chatID := m.Chat.ID
		ask := send(chatID, "Hello. What's your name?")

		return scenarist.Bind(ask, func(scenarist.Unit) scenarist.Scenario[scenarist.Unit] {
			return scenarist.Bind(scenarist.Next(scenarist.Text), func(answer *scenarist.Message) scenarist.Scenario[scenarist.Unit] {
				return send(chatID, "Nice to meet you, "+answer.Text)
			})
		})
	})
}

// echo repeats each text message after /echo until the user sends /stop or a
// message without text.
func echo(client *telegram.Client) scenarist.Scenario[scenarist.Unit] {
	var loop func(chatID int64) scenarist.Scenario[scenarist.Unit]
	loop = func(chatID int64) scenarist.Scenario[scenarist.Unit] {
		return scenarist.Bind(scenarist.Next(scenarist.Text), func(m *scenarist.Message) scenarist.Scenario[scenarist.Unit] {
			if cmd, ok := m.Command(); ok && cmd == "stop" {
				return scenarist.Done[scenarist.Unit]()
			}
			reply := scenarist.Exec(func(ctx context.Context) error {
				_, err := client.SendText(ctx, chatID, m.Text)
				return err
			})

			return scenarist.Then(reply, loop(chatID))
		})
	}

	return scenarist.Bind(scenarist.Start(scenarist.Command("echo")), func(m *scenarist.Message) scenarist.Scenario[scenarist.Unit] {
		return loop(m.Chat.ID)
	})
}
