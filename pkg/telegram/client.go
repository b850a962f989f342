package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the hosted Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// clientConfig contains transport controls for the RPC client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// ClientOption mutates client configuration.
type ClientOption func(*clientConfig)

// WithBaseURL overrides the API base URL, typically for tests or local API
// servers.
func WithBaseURL(baseURL string) ClientOption {
	return func(cfg *clientConfig) {
		if baseURL != "" {
			cfg.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		if httpClient != nil {
			cfg.httpClient = httpClient
		}
	}
}

// WithClientLogger configures structured logging for the client.
func WithClientLogger(log *zap.Logger) ClientOption {
	return func(cfg *clientConfig) {
		if log != nil {
			cfg.log = log
		}
	}
}

// Client executes typed methods against the Bot API. It never retries;
// retry policy belongs to the caller. A Client is safe for concurrent use.
type Client struct {
	cfg   clientConfig
	token string
}

// NewClient creates an RPC client for the given bot token.
func NewClient(token string, options ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("new client: %w: missing token", ErrInvalidConfig)
	}

	cfg := clientConfig{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		log:        zap.NewNop(),
	}
	for _, option := range options {
		option(&cfg)
	}

	return &Client{cfg: cfg, token: token}, nil
}

// methodURL builds the endpoint URL for one method name.
func (c *Client) methodURL(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.cfg.baseURL, c.token, name)
}

// apiResponse is the Bot API response envelope.
type apiResponse struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	Description string              `json:"description,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Parameters  *responseParameters `json:"parameters,omitempty"`
}

// responseParameters carries optional failure hints.
type responseParameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}

// Execute runs one typed method call. Requests without uploads go as JSON;
// requests with uploads go as streamed multipart with scalar form fields
// derived from the JSON encoding. Errors are transport failures, decode
// failures, or MethodError for ok=false envelopes.
func Execute[Req, Res any](ctx context.Context, c *Client, m Method[Req, Res], req Req) (Res, error) {
	var zero Res

	encoded, err := m.encode(req)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", m.Name, err)
	}

	var httpReq *http.Request
	if parts := m.uploads(req); len(parts) > 0 {
		httpReq, err = c.multipartRequest(ctx, m.Name, encoded, parts)
	} else {
		httpReq, err = c.jsonRequest(ctx, m.Name, encoded)
	}
	if err != nil {
		return zero, err
	}

	c.cfg.log.Debug("executing method", zap.String("method", m.Name))

	httpRes, err := c.cfg.httpClient.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("call %s: %w: %w", m.Name, ErrTransport, err)
	}
	defer func() { _ = httpRes.Body.Close() }()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return zero, fmt.Errorf("call %s: %w: read body: %w", m.Name, ErrTransport, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, fmt.Errorf("call %s: %w: envelope: %w", m.Name, ErrDecode, err)
	}

	if !envelope.OK {
		methodErr := &MethodError{
			Method:      m.Name,
			Code:        envelope.ErrorCode,
			Description: envelope.Description,
		}
		if envelope.Parameters != nil {
			methodErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
			methodErr.MigrateToChatID = envelope.Parameters.MigrateToChatID
		}

		return zero, methodErr
	}
	if len(envelope.Result) == 0 {
		return zero, fmt.Errorf("call %s: %w: ok envelope without result", m.Name, ErrDecode)
	}

	res, err := m.decode(envelope.Result)
	if err != nil {
		return zero, fmt.Errorf("call %s: %w: result: %w", m.Name, ErrDecode, err)
	}

	return res, nil
}

// jsonRequest builds a plain JSON POST.
func (c *Client) jsonRequest(ctx context.Context, name string, encoded []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(name), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}

// multipartRequest builds a streaming multipart POST: scalar form fields
// derived from the JSON encoding (nulls, objects, and arrays omitted) plus
// one part per upload, streamed from its reader without materialising.
func (c *Client) multipartRequest(ctx context.Context, name string, encoded []byte, parts []UploadPart) (*http.Request, error) {
	fields, err := scalarFields(encoded)
	if err != nil {
		return nil, fmt.Errorf("build %s form fields: %w", name, err)
	}

	pipeRead, pipeWrite := io.Pipe()
	writer := multipart.NewWriter(pipeWrite)

	go func() {
		err := writeMultipart(writer, fields, parts)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		_ = pipeWrite.CloseWithError(err)
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(name), pipeRead)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", name, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	return httpReq, nil
}

// writeMultipart emits all form fields and file parts in order.
func writeMultipart(writer *multipart.Writer, fields [][2]string, parts []UploadPart) error {
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("write field %s: %w", field[0], err)
		}
	}
	for _, part := range parts {
		dst, err := writer.CreateFormFile(part.Field, part.File.name)
		if err != nil {
			return fmt.Errorf("create file part %s: %w", part.Field, err)
		}
		if _, err := io.Copy(dst, part.File.reader); err != nil {
			return fmt.Errorf("stream file part %s: %w", part.Field, err)
		}
	}

	return nil
}

// scalarFields flattens a JSON object into form fields, keeping scalars only.
// Strings are unquoted; numbers and booleans keep their JSON text.
func scalarFields(encoded []byte) ([][2]string, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &object); err != nil {
		return nil, fmt.Errorf("request is not a JSON object: %w", err)
	}

	fields := make([][2]string, 0, len(object))
	for key, raw := range object {
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case 'n', '{', '[':
			continue
		case '"':
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			fields = append(fields, [2]string{key, text})
		default:
			fields = append(fields, [2]string{key, string(raw)})
		}
	}

	// Deterministic field order for reproducible requests.
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j-1][0] > fields[j][0]; j-- {
			fields[j-1], fields[j] = fields[j], fields[j-1]
		}
	}

	return fields, nil
}

// SendText sends a plain text message to a chat. Convenience over Execute
// with the sendMessage method.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) (*SentMessage, error) {
	return Execute(ctx, c, SendMessage, SendMessageRequest{ChatID: chatID, Text: text})
}

// ReplyTo sends a text message replying to a specific message in a chat.
func (c *Client) ReplyTo(ctx context.Context, chatID int64, messageID int64, text string) (*SentMessage, error) {
	return Execute(ctx, c, SendMessage, SendMessageRequest{
		ChatID:           chatID,
		Text:             text,
		ReplyToMessageID: messageID,
	})
}

// SendAction reports a transient chat action such as "typing".
func (c *Client) SendAction(ctx context.Context, chatID int64, action string) error {
	_, err := Execute(ctx, c, SendChatAction, SendChatActionRequest{ChatID: chatID, Action: action})

	return err
}
