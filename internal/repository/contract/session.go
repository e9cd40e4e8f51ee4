package contract

import (
	"context"
	"time"

	"github.com/mustafa-mbari/TeleChat/pkg/store"
)

// SessionStore holds the per-chat conversation state. Implementations give no
// durability guarantee; callers must treat a missing session as a fresh one.
type SessionStore interface {
	// Get returns nil (not an error) when the chat has no session.
	Get(ctx context.Context, chatID int64) (*store.Session, error)
	Save(ctx context.Context, session *store.Session) error
	Delete(ctx context.Context, chatID int64) error
}

// RateWindowStore keeps the per-user sliding window of request timestamps.
type RateWindowStore interface {
	Window(userID int64) []time.Time
	SetWindow(userID int64, timestamps []time.Time)
}
