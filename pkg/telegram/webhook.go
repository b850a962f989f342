package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scenarist/pkg/scenarist"
)

const (
	// DefaultWebhookPath is the endpoint path updates are POSTed to.
	DefaultWebhookPath = "/updates"

	webhookShutdownTimeout = 5 * time.Second
	webhookQueueDepth      = 64
)

// Webhook is the push-style update source. It binds a local HTTP address as
// a scoped resource: the listener opens when Consume starts and closes when
// the context ends. Each POST body parses to one update, answered with
// 200 and an empty body; delivery to the handler preserves arrival order.
type Webhook struct {
	addr string
	path string
	log  *zap.Logger

	mu    sync.Mutex
	bound string
}

// NewWebhook creates a webhook source listening on addr. An empty path uses
// DefaultWebhookPath.
func NewWebhook(addr string, path string, log *zap.Logger) (*Webhook, error) {
	if addr == "" {
		return nil, fmt.Errorf("new webhook: %w: missing listen address", ErrInvalidConfig)
	}
	if path == "" {
		path = DefaultWebhookPath
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Webhook{addr: addr, path: path, log: log}, nil
}

// Consume implements scenarist.UpdateSource: it serves the endpoint until
// context cancellation, forwarding parsed updates to the handler one at a
// time in arrival order.
func (w *Webhook) Consume(ctx context.Context, handler scenarist.UpdateHandler) error {
	if handler == nil {
		return fmt.Errorf("webhook: nil handler")
	}

	listener, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("webhook listen %s: %w", w.addr, err)
	}
	w.mu.Lock()
	w.bound = listener.Addr().String()
	w.mu.Unlock()

	inbox := make(chan scenarist.Update, webhookQueueDepth)
	mux := http.NewServeMux()
	mux.HandleFunc(w.path, func(res http.ResponseWriter, req *http.Request) {
		w.receive(req.Context(), res, req, inbox)
	})
	server := &http.Server{Handler: mux}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook serve: %w", err)
		}

		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), webhookShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		return scenarist.ChannelSource{Updates: inbox}.Consume(groupCtx, handler)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return ctx.Err()
}

// Addr returns the bound listen address once Consume has started, or the
// empty string before that. Useful when listening on port 0.
func (w *Webhook) Addr() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.bound
}

// receive parses one POSTed update and enqueues it for ordered delivery.
func (w *Webhook) receive(ctx context.Context, res http.ResponseWriter, req *http.Request, inbox chan<- scenarist.Update) {
	if req.Method != http.MethodPost {
		res.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update scenarist.Update
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		w.log.Warn("dropping malformed webhook body", zap.Error(err))
		res.WriteHeader(http.StatusBadRequest)

		return
	}

	select {
	case inbox <- update:
		res.WriteHeader(http.StatusOK)
	case <-ctx.Done():
		res.WriteHeader(http.StatusServiceUnavailable)
	}
}

// Register points the hosted API at the public URL, switching the bot to
// webhook delivery.
func (w *Webhook) Register(ctx context.Context, client *Client, publicURL string) error {
	if _, err := Execute(ctx, client, SetWebhook, SetWebhookRequest{URL: publicURL}); err != nil {
		return fmt.Errorf("register webhook %s: %w", publicURL, err)
	}

	return nil
}

// Unregister removes the webhook registration, re-enabling polling.
func (w *Webhook) Unregister(ctx context.Context, client *Client) error {
	if _, err := Execute(ctx, client, DeleteWebhook, DeleteWebhookRequest{}); err != nil {
		return fmt.Errorf("unregister webhook: %w", err)
	}

	return nil
}
