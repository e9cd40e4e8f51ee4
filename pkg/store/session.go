package store

// Mode is the single active interpretation context for the next free-text
// input in a chat. At most one non-normal mode is set at a time.
type Mode string

const (
	ModeNormal           Mode = "NORMAL"
	ModeAwaitingCategory Mode = "AWAITING_CATEGORY"
	ModeAwaitingSearch   Mode = "AWAITING_SEARCH"
	ModeEditing          Mode = "EDITING"
)

// EditField selects which part of a task an edit targets.
type EditField string

const (
	EditFieldTitle    EditField = "title"
	EditFieldPriority EditField = "priority"
	// EditFieldChoice means the user pressed Edit and is choosing what to change.
	EditFieldChoice EditField = "choice"
)

// EditTarget is present only while Mode == ModeEditing.
type EditTarget struct {
	RecordID string    `json:"record_id"`
	Field    EditField `json:"field"`
}

// Session is the ephemeral per-chat conversation state. It lives in an
// in-process cache (or Redis) and is discarded across restarts; the document
// store remains the source of truth.
type Session struct {
	ChatID     int64       `json:"chat_id"`
	PendingURL string      `json:"pending_url,omitempty"`
	Mode       Mode        `json:"mode"`
	Edit       *EditTarget `json:"edit,omitempty"`
}

// New returns a fresh normal-mode session for the chat.
func New(chatID int64) *Session {
	return &Session{ChatID: chatID, Mode: ModeNormal}
}

// Reset clears the pending URL, edit target and mode in one step. Used on
// cancel, on successful save, and when rolling back after an external failure.
func (s *Session) Reset() {
	s.PendingURL = ""
	s.Edit = nil
	s.Mode = ModeNormal
}
