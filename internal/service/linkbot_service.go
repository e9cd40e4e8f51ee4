package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mustafa-mbari/TeleChat/internal/dto"
	"github.com/mustafa-mbari/TeleChat/internal/entity"
	"github.com/mustafa-mbari/TeleChat/internal/mapper"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/logger"
	"github.com/mustafa-mbari/TeleChat/internal/repository/contract"
	"github.com/mustafa-mbari/TeleChat/pkg/notion"
	"github.com/mustafa-mbari/TeleChat/pkg/store"
	"github.com/mustafa-mbari/TeleChat/pkg/telegram"

	"github.com/google/uuid"
)

const linkbotHelp = `I save links into your document store.

Send me a URL and pick a category for it.

Commands:
/list - show the most recent saved links
/search <keyword> - search saved links
/delete - how to remove a link
/cancel - abort the current flow
/help - this message`

type ILinkbotService interface {
	HandleUpdate(ctx context.Context, upd *dto.Update) error
}

type linkbotService struct {
	sessions         contract.SessionStore
	guard            *Guard
	messenger        telegram.Messenger
	docs             notion.Store
	publisher        IPublisherService
	logger           logger.ILogger
	databaseID       string
	categoryProperty string
}

func NewLinkbotService(
	sessions contract.SessionStore,
	guard *Guard,
	messenger telegram.Messenger,
	docs notion.Store,
	publisher IPublisherService,
	sysLogger logger.ILogger,
	databaseID string,
	categoryProperty string,
) ILinkbotService {
	return &linkbotService{
		sessions:         sessions,
		guard:            guard,
		messenger:        messenger,
		docs:             docs,
		publisher:        publisher,
		logger:           sysLogger,
		databaseID:       databaseID,
		categoryProperty: categoryProperty,
	}
}

func (s *linkbotService) HandleUpdate(ctx context.Context, upd *dto.Update) error {
	switch {
	case upd.Message != nil:
		return s.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		return s.handleCallback(ctx, upd.CallbackQuery)
	}
	return nil
}

// handleMessage runs the guard checks, then dispatches on the session mode.
func (s *linkbotService) handleMessage(ctx context.Context, msg *dto.Message) error {
	if msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if err := s.guard.AdmitMessage(userID); err != nil {
		return s.replyGuardError(ctx, chatID, userID, err)
	}

	session := loadSession(ctx, s.sessions, chatID, s.logger)
	text := strings.TrimSpace(msg.Text)

	switch session.Mode {
	case store.ModeAwaitingCategory:
		return s.handleCategoryText(ctx, session, userID, text)
	case store.ModeAwaitingSearch:
		return s.handleSearchKeyword(ctx, session, text)
	}

	// Normal mode: commands first, then URL capture, then fallback guidance.
	if strings.HasPrefix(text, "/") {
		return s.handleCommand(ctx, session, text)
	}
	if url := entity.ExtractURL(text); url != "" {
		return s.handleURL(ctx, session, url, false)
	}
	return s.send(ctx, chatID, "Send me a link to save, or /help for what I can do.", nil)
}

func (s *linkbotService) handleCommand(ctx context.Context, session *store.Session, text string) error {
	command, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	switch command {
	case "/start", "/help":
		return s.send(ctx, session.ChatID, linkbotHelp, nil)
	case "/list":
		return s.listRecent(ctx, session.ChatID)
	case "/search":
		if args != "" {
			return s.searchLinks(ctx, session.ChatID, args)
		}
		session.Mode = store.ModeAwaitingSearch
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, "What should I search for? Send a keyword, or /cancel.", nil)
	case "/delete":
		return s.send(ctx, session.ChatID, "Use /list or /search to find a link, then press its Delete button.", nil)
	case "/cancel":
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, msgCancelled, nil)
	}
	return s.send(ctx, session.ChatID, "Unknown command. Try /help.", nil)
}

// handleURL captures the URL, checks for an existing record and either offers
// the force-save choice or the category keyboard. forceSave bypasses the
// duplicate check after the user confirmed.
func (s *linkbotService) handleURL(ctx context.Context, session *store.Session, url string, forceSave bool) error {
	if !forceSave {
		if dup := s.findDuplicate(ctx, url); dup != nil {
			keyboard := telegram.Keyboard(
				telegram.Row(
					telegram.Button("Save anyway", entity.ForceSaveCallback(url)),
					telegram.Button("Cancel", entity.CancelCallback()),
				),
			)
			text := fmt.Sprintf("This link is already saved as %q (%s).", dup.Title, dup.Category)
			return s.send(ctx, session.ChatID, text, &telegram.SendOptions{ReplyMarkup: keyboard, DisableWebPreview: true})
		}
	}

	categories, err := s.docs.ListSelectOptions(ctx, s.databaseID, s.categoryProperty)
	if err != nil {
		s.logger.Error("linkbot", "Failed to list categories", map[string]interface{}{"error": err.Error()})
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, msgGenericError, nil)
	}

	session.Reset()
	session.PendingURL = url
	saveSession(ctx, s.sessions, session, s.logger)

	return s.send(ctx, session.ChatID, "Pick a category:", &telegram.SendOptions{
		ReplyMarkup:       categoryKeyboard(categories),
		DisableWebPreview: true,
	})
}

// findDuplicate is advisory: the store is eventually consistent and a query
// failure must not block saving, so both cases report "no duplicate".
func (s *linkbotService) findDuplicate(ctx context.Context, url string) *entity.LinkRecord {
	pages, err := s.docs.QueryDatabase(ctx, s.databaseID, notion.Query{
		Filter:   notion.URLEquals(mapper.PropURL, url),
		PageSize: 1,
	})
	if err != nil {
		s.logger.Warn("linkbot", "Duplicate check failed, continuing", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if len(pages) == 0 {
		return nil
	}
	record := mapper.LinkFromPage(pages[0])
	return &record
}

// handleCategoryText is the AwaitingCategoryText mode: the next free text is
// the name of a new category for the pending URL.
func (s *linkbotService) handleCategoryText(ctx context.Context, session *store.Session, userID int64, text string) error {
	if text == "/cancel" {
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, msgCancelled, nil)
	}

	if text == "" || utf8.RuneCountInString(text) > maxCategoryLength {
		prompt := fmt.Sprintf("Category names must be 1-%d characters. Try again, or /cancel.", maxCategoryLength)
		return s.send(ctx, session.ChatID, prompt, nil)
	}

	if session.PendingURL == "" {
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, msgSessionExpired, nil)
	}

	// Idempotent on a case-insensitive match; first insertion's casing wins.
	if err := s.docs.AddSelectOption(ctx, s.databaseID, s.categoryProperty, text); err != nil {
		s.logger.Error("linkbot", "Failed to add category", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, session.ChatID, "Couldn't create that category. Try again, or /cancel.", nil)
	}

	return s.persistLink(ctx, session, userID, text)
}

// persistLink writes the pending URL with the chosen category, clears the
// session and confirms. On failure the pending URL survives so the user can
// retry the category choice.
func (s *linkbotService) persistLink(ctx context.Context, session *store.Session, userID int64, category string) error {
	url := session.PendingURL
	nr := nextSequence(ctx, s.docs, s.databaseID, s.logger)

	page, err := s.docs.CreatePage(ctx, s.databaseID, mapper.LinkProperties(url, url, category, time.Now(), nr))
	if err != nil {
		s.logger.Error("linkbot", "Failed to create link record", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, session.ChatID, "Couldn't save the link. Pick a category again, or /cancel.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "link",
		Action:     dto.RecordActionCreated,
		RecordID:   page.ID,
		Title:      url,
		ChatID:     session.ChatID,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	session.Reset()
	saveSession(ctx, s.sessions, session, s.logger)
	return s.send(ctx, session.ChatID, fmt.Sprintf("Saved under %q.", category), &telegram.SendOptions{DisableWebPreview: true})
}

func (s *linkbotService) handleSearchKeyword(ctx context.Context, session *store.Session, text string) error {
	session.Mode = store.ModeNormal
	saveSession(ctx, s.sessions, session, s.logger)

	if text == "/cancel" {
		return s.send(ctx, session.ChatID, msgCancelled, nil)
	}
	return s.searchLinks(ctx, session.ChatID, text)
}

func (s *linkbotService) searchLinks(ctx context.Context, chatID int64, keyword string) error {
	pages, err := s.docs.QueryDatabase(ctx, s.databaseID, notion.Query{
		Filter:   notion.TitleContains(mapper.PropTitle, keyword),
		PageSize: listPageSize,
	})
	if err != nil {
		s.logger.Error("linkbot", "Search failed", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, chatID, msgGenericError, nil)
	}
	if len(pages) == 0 {
		return s.send(ctx, chatID, fmt.Sprintf("No links found for %q.", keyword), nil)
	}

	for _, page := range pages {
		record := mapper.LinkFromPage(page)
		keyboard := telegram.Keyboard(telegram.Row(telegram.Button("🗑 Delete", entity.DeleteCallback(record.ID))))
		text := fmt.Sprintf("%s (%s)\n%s", record.Title, record.Category, record.URL)
		if err := s.send(ctx, chatID, text, &telegram.SendOptions{ReplyMarkup: keyboard, DisableWebPreview: true}); err != nil {
			return err
		}
	}
	return nil
}

func (s *linkbotService) listRecent(ctx context.Context, chatID int64) error {
	pages, err := s.docs.QueryDatabase(ctx, s.databaseID, notion.Query{
		Sorts:    []notion.Sort{{Property: mapper.PropCreated, Direction: "descending"}},
		PageSize: listPageSize,
	})
	if err != nil {
		s.logger.Error("linkbot", "List failed", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, chatID, msgGenericError, nil)
	}
	if len(pages) == 0 {
		return s.send(ctx, chatID, "No links saved yet.", nil)
	}

	var b strings.Builder
	b.WriteString("Recent links:\n")
	for _, page := range pages {
		record := mapper.LinkFromPage(page)
		if record.SequenceNumber > 0 {
			fmt.Fprintf(&b, "#%d %s (%s)\n%s\n", record.SequenceNumber, record.Title, record.Category, record.URL)
		} else {
			fmt.Fprintf(&b, "%s (%s)\n%s\n", record.Title, record.Category, record.URL)
		}
	}
	return s.send(ctx, chatID, b.String(), &telegram.SendOptions{DisableWebPreview: true})
}

// handleCallback dispatches button presses. Only the allow-list applies here;
// every path answers the callback so the client stops its spinner.
func (s *linkbotService) handleCallback(ctx context.Context, cb *dto.CallbackQuery) error {
	if cb.Message == nil {
		return s.answer(ctx, cb.ID, "")
	}
	chatID := cb.Message.Chat.ID

	if err := s.guard.Authorize(cb.From.ID); err != nil {
		return s.answer(ctx, cb.ID, msgNotAuthorized)
	}

	session := loadSession(ctx, s.sessions, chatID, s.logger)

	switch callback := entity.ParseCallback(cb.Data); callback.Kind {
	case entity.CallbackCategory:
		if session.PendingURL == "" {
			session.Reset()
			saveSession(ctx, s.sessions, session, s.logger)
			if err := s.answer(ctx, cb.ID, ""); err != nil {
				return err
			}
			return s.send(ctx, chatID, msgSessionExpired, nil)
		}
		if err := s.answer(ctx, cb.ID, ""); err != nil {
			return err
		}
		return s.persistLink(ctx, session, cb.From.ID, callback.Value)

	case entity.CallbackNewCategory:
		if session.PendingURL == "" {
			session.Reset()
			saveSession(ctx, s.sessions, session, s.logger)
			if err := s.answer(ctx, cb.ID, ""); err != nil {
				return err
			}
			return s.send(ctx, chatID, msgSessionExpired, nil)
		}
		session.Mode = store.ModeAwaitingCategory
		saveSession(ctx, s.sessions, session, s.logger)
		if err := s.answer(ctx, cb.ID, ""); err != nil {
			return err
		}
		prompt := fmt.Sprintf("Send a name for the new category (1-%d characters), or /cancel.", maxCategoryLength)
		return s.send(ctx, chatID, prompt, nil)

	case entity.CallbackDelete:
		return s.archiveRecord(ctx, cb, chatID, callback.Value)

	case entity.CallbackForceSave:
		if err := s.answer(ctx, cb.ID, ""); err != nil {
			return err
		}
		return s.handleURL(ctx, session, callback.Value, true)

	case entity.CallbackCancel:
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		if err := s.answer(ctx, cb.ID, msgCancelled); err != nil {
			return err
		}
		return s.send(ctx, chatID, msgCancelled, nil)
	}

	// Unknown or foreign payloads get a silent acknowledgment.
	return s.answer(ctx, cb.ID, "")
}

func (s *linkbotService) archiveRecord(ctx context.Context, cb *dto.CallbackQuery, chatID int64, recordID string) error {
	if err := s.docs.ArchivePage(ctx, recordID); err != nil {
		s.logger.Error("linkbot", "Failed to archive record", map[string]interface{}{
			"record_id": recordID,
			"error":     err.Error(),
		})
		if ansErr := s.answer(ctx, cb.ID, ""); ansErr != nil {
			return ansErr
		}
		return s.send(ctx, chatID, "Couldn't delete that link. Please try again.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "link",
		Action:     dto.RecordActionArchived,
		RecordID:   recordID,
		ChatID:     chatID,
		UserID:     cb.From.ID,
		OccurredAt: time.Now(),
	})

	if err := s.answer(ctx, cb.ID, "Deleted"); err != nil {
		return err
	}
	return s.send(ctx, chatID, "🗑 Deleted.", nil)
}

func (s *linkbotService) replyGuardError(ctx context.Context, chatID, userID int64, err error) error {
	var rateErr *RateLimitedError
	if errors.As(err, &rateErr) {
		s.logger.Warn("linkbot", "Rate limited", map[string]interface{}{"user_id": userID})
		text := fmt.Sprintf("Slow down: at most %d messages per %s. Requests left: %d.",
			rateErr.MaxRequests, rateErr.Window, rateErr.Remaining)
		return s.send(ctx, chatID, text, nil)
	}
	s.logger.Warn("linkbot", "Unauthorized user", map[string]interface{}{"user_id": userID})
	return s.send(ctx, chatID, msgNotAuthorized, nil)
}

func (s *linkbotService) send(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) error {
	if err := s.messenger.SendMessage(ctx, chatID, text, opts); err != nil {
		s.logger.Error("linkbot", "Failed to send message", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func (s *linkbotService) answer(ctx context.Context, callbackQueryID, text string) error {
	if err := s.messenger.AnswerCallbackQuery(ctx, callbackQueryID, text); err != nil {
		s.logger.Error("linkbot", "Failed to answer callback", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// categoryKeyboard lays out existing categories two per row, with the
// synthetic "create new" choice and a cancel row at the bottom.
func categoryKeyboard(categories []string) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for i := 0; i < len(categories); i += 2 {
		row := telegram.Row(telegram.Button(categories[i], entity.CategoryCallback(categories[i])))
		if i+1 < len(categories) {
			row = append(row, telegram.Button(categories[i+1], entity.CategoryCallback(categories[i+1])))
		}
		rows = append(rows, row)
	}
	rows = append(rows, telegram.Row(telegram.Button("➕ New category", entity.NewCategoryCallback())))
	rows = append(rows, telegram.Row(telegram.Button("Cancel", entity.CancelCallback())))
	return telegram.Keyboard(rows...)
}
