package scenarist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateKindSelectsPayloadBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		update Update
		want   UpdateKind
	}{
		{"message", Update{ID: 1, Message: &Message{}}, UpdateKindMessage},
		{"edited message", Update{ID: 2, EditedMessage: &Message{}}, UpdateKindEditedMessage},
		{"channel post", Update{ID: 3, ChannelPost: &Message{}}, UpdateKindChannelPost},
		{"edited channel post", Update{ID: 4, EditedChannelPost: &Message{}}, UpdateKindEditedChannelPost},
		{"inline query", Update{ID: 5, InlineQuery: &InlineQuery{}}, UpdateKindInlineQuery},
		{"chosen inline result", Update{ID: 6, ChosenInlineResult: &ChosenInlineResult{}}, UpdateKindChosenInlineResult},
		{"callback query", Update{ID: 7, CallbackQuery: &CallbackQuery{}}, UpdateKindCallbackQuery},
		{"shipping query", Update{ID: 8, ShippingQuery: &ShippingQuery{}}, UpdateKindShippingQuery},
		{"pre-checkout query", Update{ID: 9, PreCheckoutQuery: &PreCheckoutQuery{}}, UpdateKindPreCheckoutQuery},
		{"poll", Update{ID: 10, Poll: &Poll{}}, UpdateKindPoll},
		{"empty", Update{ID: 11}, UpdateKindUnknown},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, testCase.update.Kind())
			if testCase.want == UpdateKindUnknown {
				assert.ErrorIs(t, testCase.update.Validate(), ErrInvalidUpdate)
			} else {
				assert.NoError(t, testCase.update.Validate())
			}
		})
	}
}

func TestUpdateDecodesFromWireFormat(t *testing.T) {
	t.Parallel()

	raw := `{
		"update_id": 8155,
		"message": {
			"message_id": 12,
			"from": {"id": 55, "is_bot": false, "first_name": "Alice"},
			"chat": {"id": 42, "type": "private"},
			"date": 1700000000,
			"text": "/hi@some_bot now"
		}
	}`

	var update Update
	require.NoError(t, json.Unmarshal([]byte(raw), &update))

	assert.Equal(t, int64(8155), update.ID)
	require.Equal(t, UpdateKindMessage, update.Kind())
	assert.Equal(t, int64(42), update.Message.Chat.ID)
	assert.Equal(t, int64(55), update.Message.From.ID)

	command, ok := update.Message.Command()
	require.True(t, ok)
	assert.Equal(t, "hi", command)
}

func TestMessageCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text    string
		want    string
		matches bool
	}{
		{"/start", "start", true},
		{"/start arg one", "start", true},
		{"/start@my_bot arg", "start", true},
		{"plain text", "", false},
		{"/", "", false},
		{"", "", false},
		{"half /start", "", false},
	}

	for _, testCase := range tests {
		message := &Message{Text: testCase.text}
		got, ok := message.Command()
		assert.Equal(t, testCase.matches, ok, "text %q", testCase.text)
		assert.Equal(t, testCase.want, got, "text %q", testCase.text)
	}

	var nilMessage *Message
	_, ok := nilMessage.Command()
	assert.False(t, ok)
}
