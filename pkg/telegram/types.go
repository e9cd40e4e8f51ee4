package telegram

// InlineKeyboardButton is one button on an inline keyboard. CallbackData is
// echoed back verbatim when the button is pressed.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// InlineKeyboardMarkup is a grid of inline buttons.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendOptions are the optional send/edit parameters the engine uses.
type SendOptions struct {
	ParseMode         string
	DisableWebPreview bool
	ReplyMarkup       *InlineKeyboardMarkup
}

// Row is a small helper for building keyboards one row at a time.
func Row(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}

// Button pairs a label with its callback payload.
func Button(text, callbackData string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// Keyboard assembles rows into a markup.
func Keyboard(rows ...[]InlineKeyboardButton) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
