package scenarist

// Classifier pipes: one pure partial projection per update variant. Each is
// an Expect and composes with When. The runtime itself uses Messages to find
// triggering messages; everything else exists for user scenarios.

// Messages projects incoming messages.
var Messages Expect[*Message] = func(u Update) (*Message, bool) {
	return u.Message, u.Message != nil
}

// EditedMessages projects edits of previously sent messages.
var EditedMessages Expect[*Message] = func(u Update) (*Message, bool) {
	return u.EditedMessage, u.EditedMessage != nil
}

// ChannelPosts projects incoming channel posts.
var ChannelPosts Expect[*Message] = func(u Update) (*Message, bool) {
	return u.ChannelPost, u.ChannelPost != nil
}

// EditedChannelPosts projects edits of channel posts.
var EditedChannelPosts Expect[*Message] = func(u Update) (*Message, bool) {
	return u.EditedChannelPost, u.EditedChannelPost != nil
}

// InlineQueries projects incoming inline queries.
var InlineQueries Expect[*InlineQuery] = func(u Update) (*InlineQuery, bool) {
	return u.InlineQuery, u.InlineQuery != nil
}

// ChosenInlineResults projects chosen inline results.
var ChosenInlineResults Expect[*ChosenInlineResult] = func(u Update) (*ChosenInlineResult, bool) {
	return u.ChosenInlineResult, u.ChosenInlineResult != nil
}

// CallbackQueries projects incoming callback queries.
var CallbackQueries Expect[*CallbackQuery] = func(u Update) (*CallbackQuery, bool) {
	return u.CallbackQuery, u.CallbackQuery != nil
}

// ShippingQueries projects incoming shipping queries.
var ShippingQueries Expect[*ShippingQuery] = func(u Update) (*ShippingQuery, bool) {
	return u.ShippingQuery, u.ShippingQuery != nil
}

// PreCheckoutQueries projects incoming pre-checkout queries.
var PreCheckoutQueries Expect[*PreCheckoutQuery] = func(u Update) (*PreCheckoutQuery, bool) {
	return u.PreCheckoutQuery, u.PreCheckoutQuery != nil
}

// Polls projects poll state changes.
var Polls Expect[*Poll] = func(u Update) (*Poll, bool) {
	return u.Poll, u.Poll != nil
}
