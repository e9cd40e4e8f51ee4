package service

import (
	"context"

	"github.com/mustafa-mbari/TeleChat/internal/mapper"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/logger"
	"github.com/mustafa-mbari/TeleChat/internal/repository/contract"
	"github.com/mustafa-mbari/TeleChat/pkg/notion"
	"github.com/mustafa-mbari/TeleChat/pkg/store"
)

const (
	maxCategoryLength  = 50
	maxTaskTitleLength = 200
	listPageSize       = 10
)

// Texts shared by both bots.
const (
	msgNotAuthorized  = "Sorry, you are not allowed to use this bot."
	msgGenericError   = "Sorry, something went wrong. Please try again."
	msgSessionExpired = "That session has expired. Please resend your input to start over."
	msgCancelled      = "Cancelled."
)

// loadSession never fails: a store error is logged and treated as a missing
// session, so the user lands in a fresh normal-mode conversation.
func loadSession(ctx context.Context, sessions contract.SessionStore, chatID int64, log logger.ILogger) *store.Session {
	session, err := sessions.Get(ctx, chatID)
	if err != nil {
		log.Warn("session", "Failed to load session, starting fresh", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
	if session == nil {
		session = store.New(chatID)
	}
	return session
}

func saveSession(ctx context.Context, sessions contract.SessionStore, session *store.Session, log logger.ILogger) {
	if err := sessions.Save(ctx, session); err != nil {
		log.Error("session", "Failed to save session", map[string]interface{}{
			"chat_id": session.ChatID,
			"error":   err.Error(),
		})
	}
}

// nextSequence reads the current maximum Nr and increments it. Non-atomic and
// advisory only: a failed read yields 0, which omits the property entirely.
func nextSequence(ctx context.Context, docs notion.Store, databaseID string, log logger.ILogger) int {
	pages, err := docs.QueryDatabase(ctx, databaseID, notion.Query{
		Sorts:    []notion.Sort{{Property: mapper.PropNr, Direction: "descending"}},
		PageSize: 1,
	})
	if err != nil {
		log.Warn("sequence", "Failed to read max sequence number", map[string]interface{}{"error": err.Error()})
		return 0
	}
	if len(pages) == 0 {
		return 1
	}
	return int(pages[0].NumberValue(mapper.PropNr)) + 1
}
