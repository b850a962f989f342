package scenarist

// Expect is a partial projection from an update to a value of interest. The
// second result reports whether the update matched. Expects must be pure: the
// interpreter may apply one to any number of updates.
type Expect[T any] func(Update) (T, bool)

// When narrows the expect with a predicate over the projected value.
func (e Expect[T]) When(pred func(T) bool) Expect[T] {
	return func(u Update) (T, bool) {
		value, ok := e(u)
		if !ok || !pred(value) {
			var zero T
			return zero, false
		}

		return value, true
	}
}

// Command matches messages carrying the given bot command, with or without a
// @botname suffix.
func Command(name string) Expect[*Message] {
	return Messages.When(func(m *Message) bool {
		got, ok := m.Command()
		return ok && got == name
	})
}

// Text matches any message with a non-empty text body, commands included.
var Text Expect[*Message] = Messages.When(func(m *Message) bool {
	return m.Text != ""
})

// PlainText matches messages with a non-empty text body that is not a bot
// command.
var PlainText Expect[*Message] = Messages.When(func(m *Message) bool {
	if m.Text == "" {
		return false
	}
	_, isCommand := m.Command()

	return !isCommand
})

// MessageFrom matches messages sent by the given user.
func MessageFrom(userID int64) Expect[*Message] {
	return Messages.When(func(m *Message) bool {
		return m.From != nil && m.From.ID == userID
	})
}

// CallbackData matches callback queries carrying the given payload.
func CallbackData(data string) Expect[*CallbackQuery] {
	return CallbackQueries.When(func(q *CallbackQuery) bool {
		return q.Data == data
	})
}
