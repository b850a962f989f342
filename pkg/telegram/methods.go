package telegram

import (
	"scenarist/pkg/scenarist"
)

// SentMessage is the API's view of a delivered or edited message.
type SentMessage = scenarist.Message

// GetMeRequest has no parameters.
type GetMeRequest struct{}

// GetMe identifies the bot account behind the token.
var GetMe = Method[GetMeRequest, *scenarist.User]{Name: "getMe"}

// GetUpdatesRequest asks for the next batch of updates at an offset.
type GetUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	TimeoutSeconds int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// GetUpdates long-polls for incoming updates.
var GetUpdates = Method[GetUpdatesRequest, []scenarist.Update]{Name: "getUpdates"}

// SendMessageRequest sends a text message to a chat.
type SendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`
	ReplyToMessageID      int64  `json:"reply_to_message_id,omitempty"`
}

// SendMessage posts a new text message.
var SendMessage = Method[SendMessageRequest, *SentMessage]{Name: "sendMessage"}

// EditMessageTextRequest replaces the text of an existing message.
type EditMessageTextRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// EditMessageText edits a previously sent message.
var EditMessageText = Method[EditMessageTextRequest, *SentMessage]{Name: "editMessageText"}

// DeleteMessageRequest removes one message from a chat.
type DeleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// DeleteMessage deletes a message.
var DeleteMessage = Method[DeleteMessageRequest, bool]{Name: "deleteMessage"}

// ForwardMessageRequest copies a message between chats.
type ForwardMessageRequest struct {
	ChatID              int64 `json:"chat_id"`
	FromChatID          int64 `json:"from_chat_id"`
	MessageID           int64 `json:"message_id"`
	DisableNotification bool  `json:"disable_notification,omitempty"`
}

// ForwardMessage forwards a message.
var ForwardMessage = Method[ForwardMessageRequest, *SentMessage]{Name: "forwardMessage"}

// AnswerCallbackQueryRequest acknowledges a callback query.
type AnswerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

// AnswerCallbackQuery answers an inline keyboard callback.
var AnswerCallbackQuery = Method[AnswerCallbackQueryRequest, bool]{Name: "answerCallbackQuery"}

// SendChatActionRequest reports a transient action in a chat.
type SendChatActionRequest struct {
	ChatID int64  `json:"chat_id"`
	Action string `json:"action"`
}

// SendChatAction reports actions such as "typing".
var SendChatAction = Method[SendChatActionRequest, bool]{Name: "sendChatAction"}

// SendDocumentRequest sends a file, either by file_id or as a streamed
// upload.
type SendDocumentRequest struct {
	ChatID              int64     `json:"chat_id"`
	Document            InputFile `json:"document"`
	Caption             string    `json:"caption,omitempty"`
	DisableNotification bool      `json:"disable_notification,omitempty"`
}

// SendDocument sends a document attachment.
var SendDocument = Method[SendDocumentRequest, *SentMessage]{
	Name: "sendDocument",
	Uploads: func(req SendDocumentRequest) []UploadPart {
		return []UploadPart{{Field: "document", File: req.Document}}
	},
}

// SetWebhookRequest registers a webhook URL with the API.
type SetWebhookRequest struct {
	URL            string   `json:"url"`
	MaxConnections int      `json:"max_connections,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SetWebhook switches the bot to webhook delivery.
var SetWebhook = Method[SetWebhookRequest, bool]{Name: "setWebhook"}

// DeleteWebhookRequest removes webhook registration.
type DeleteWebhookRequest struct {
	DropPendingUpdates bool `json:"drop_pending_updates,omitempty"`
}

// DeleteWebhook switches the bot back to polling delivery.
var DeleteWebhook = Method[DeleteWebhookRequest, bool]{Name: "deleteWebhook"}
