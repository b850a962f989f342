// Package scenarist is the core of a compositional Telegram bot library. It
// defines the update model, the Expect projections used to filter updates,
// the Scenario algebra describing multi-step conversations, and the Bot
// runtime that fans one update stream out to many concurrent scenario
// instances.
package scenarist

import (
	"fmt"
	"strings"
)

// UpdateKind identifies which payload branch of an Update is set.
type UpdateKind string

const (
	// UpdateKindMessage is an incoming message.
	UpdateKindMessage UpdateKind = "message"
	// UpdateKindEditedMessage is an edit of a previously sent message.
	UpdateKindEditedMessage UpdateKind = "edited_message"
	// UpdateKindChannelPost is an incoming channel post.
	UpdateKindChannelPost UpdateKind = "channel_post"
	// UpdateKindEditedChannelPost is an edit of a channel post.
	UpdateKindEditedChannelPost UpdateKind = "edited_channel_post"
	// UpdateKindInlineQuery is an incoming inline query.
	UpdateKindInlineQuery UpdateKind = "inline_query"
	// UpdateKindChosenInlineResult is a chosen inline query result.
	UpdateKindChosenInlineResult UpdateKind = "chosen_inline_result"
	// UpdateKindCallbackQuery is an incoming callback query.
	UpdateKindCallbackQuery UpdateKind = "callback_query"
	// UpdateKindShippingQuery is an incoming shipping query.
	UpdateKindShippingQuery UpdateKind = "shipping_query"
	// UpdateKindPreCheckoutQuery is an incoming pre-checkout query.
	UpdateKindPreCheckoutQuery UpdateKind = "pre_checkout_query"
	// UpdateKindPoll is a poll state change.
	UpdateKindPoll UpdateKind = "poll"
	// UpdateKindUnknown means no known payload branch is set.
	UpdateKindUnknown UpdateKind = "unknown"
)

// Update is one externally delivered event. Exactly one payload branch is
// set; Kind reports which. Field names follow the Bot API wire format so an
// Update decodes directly from a getUpdates batch or a webhook body.
type Update struct {
	ID                 int64               `json:"update_id"`
	Message            *Message            `json:"message,omitempty"`
	EditedMessage      *Message            `json:"edited_message,omitempty"`
	ChannelPost        *Message            `json:"channel_post,omitempty"`
	EditedChannelPost  *Message            `json:"edited_channel_post,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
	ShippingQuery      *ShippingQuery      `json:"shipping_query,omitempty"`
	PreCheckoutQuery   *PreCheckoutQuery   `json:"pre_checkout_query,omitempty"`
	Poll               *Poll               `json:"poll,omitempty"`
}

// Kind reports which payload branch is set.
func (u Update) Kind() UpdateKind {
	switch {
	case u.Message != nil:
		return UpdateKindMessage
	case u.EditedMessage != nil:
		return UpdateKindEditedMessage
	case u.ChannelPost != nil:
		return UpdateKindChannelPost
	case u.EditedChannelPost != nil:
		return UpdateKindEditedChannelPost
	case u.InlineQuery != nil:
		return UpdateKindInlineQuery
	case u.ChosenInlineResult != nil:
		return UpdateKindChosenInlineResult
	case u.CallbackQuery != nil:
		return UpdateKindCallbackQuery
	case u.ShippingQuery != nil:
		return UpdateKindShippingQuery
	case u.PreCheckoutQuery != nil:
		return UpdateKindPreCheckoutQuery
	case u.Poll != nil:
		return UpdateKindPoll
	default:
		return UpdateKindUnknown
	}
}

// Validate checks that the update carries a recognized payload branch.
func (u Update) Validate() error {
	if u.Kind() == UpdateKindUnknown {
		return fmt.Errorf("%w: update %d has no payload", ErrInvalidUpdate, u.ID)
	}

	return nil
}

// Chat identifies a conversation.
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// User identifies a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Message is an incoming message. The runtime interprets only Chat.ID and
// From; content fields exist for user predicates and replies.
type Message struct {
	ID       int64           `json:"message_id"`
	From     *User           `json:"from,omitempty"`
	Chat     Chat            `json:"chat"`
	Date     int64           `json:"date,omitempty"`
	Text     string          `json:"text,omitempty"`
	Entities []MessageEntity `json:"entities,omitempty"`
	Caption  string          `json:"caption,omitempty"`
	Document *Document       `json:"document,omitempty"`
	Photo    []PhotoSize     `json:"photo,omitempty"`
	ReplyTo  *Message        `json:"reply_to_message,omitempty"`
}

// Command extracts the bot command this message starts with, without the
// leading slash or a @botname suffix. The second result is false for
// non-command messages.
func (m *Message) Command() (string, bool) {
	if m == nil || !strings.HasPrefix(m.Text, "/") {
		return "", false
	}
	name := m.Text[1:]
	if cut := strings.IndexAny(name, " \t\n"); cut >= 0 {
		name = name[:cut]
	}
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", false
	}

	return name, true
}

// MessageEntity marks a formatted range inside message text.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
}

// Document is a generic file attachment.
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// PhotoSize is one available size of a photo attachment.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`
}

// InlineQuery is an incoming inline query.
type InlineQuery struct {
	ID     string `json:"id"`
	From   User   `json:"from"`
	Query  string `json:"query"`
	Offset string `json:"offset,omitempty"`
}

// ChosenInlineResult reports which inline result a user picked.
type ChosenInlineResult struct {
	ResultID string `json:"result_id"`
	From     User   `json:"from"`
	Query    string `json:"query,omitempty"`
}

// CallbackQuery is an incoming callback query from an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// ShippingQuery is an incoming shipping query.
type ShippingQuery struct {
	ID              string `json:"id"`
	From            User   `json:"from"`
	InvoicePayload  string `json:"invoice_payload"`
	ShippingAddress any    `json:"shipping_address,omitempty"`
}

// PreCheckoutQuery is an incoming pre-checkout query.
type PreCheckoutQuery struct {
	ID             string `json:"id"`
	From           User   `json:"from"`
	Currency       string `json:"currency"`
	TotalAmount    int64  `json:"total_amount"`
	InvoicePayload string `json:"invoice_payload"`
}

// Poll is a poll state change.
type Poll struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	IsClosed bool   `json:"is_closed,omitempty"`
}
