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

const taskbotHelp = `I turn your messages into tasks.

Send me any text and I save it as a pending task (priority Medium).

Commands:
/list - show the most recent tasks
/search <keyword> - search tasks
/cancel - abort the current flow
/help - this message`

type ITaskbotService interface {
	HandleUpdate(ctx context.Context, upd *dto.Update) error
}

type taskbotService struct {
	sessions   contract.SessionStore
	guard      *Guard
	messenger  telegram.Messenger
	docs       notion.Store
	publisher  IPublisherService
	logger     logger.ILogger
	databaseID string
}

func NewTaskbotService(
	sessions contract.SessionStore,
	guard *Guard,
	messenger telegram.Messenger,
	docs notion.Store,
	publisher IPublisherService,
	sysLogger logger.ILogger,
	databaseID string,
) ITaskbotService {
	return &taskbotService{
		sessions:   sessions,
		guard:      guard,
		messenger:  messenger,
		docs:       docs,
		publisher:  publisher,
		logger:     sysLogger,
		databaseID: databaseID,
	}
}

func (s *taskbotService) HandleUpdate(ctx context.Context, upd *dto.Update) error {
	switch {
	case upd.Message != nil:
		return s.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		return s.handleCallback(ctx, upd.CallbackQuery)
	}
	return nil
}

func (s *taskbotService) handleMessage(ctx context.Context, msg *dto.Message) error {
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

	// A title edit intercepts free text; any other edit sub-target lets text
	// fall through to the default task-creation branch.
	if session.Mode == store.ModeEditing {
		if session.Edit == nil {
			session.Reset()
			saveSession(ctx, s.sessions, session, s.logger)
			return s.send(ctx, chatID, msgSessionExpired, nil)
		}
		if text == "/cancel" {
			session.Reset()
			saveSession(ctx, s.sessions, session, s.logger)
			return s.send(ctx, chatID, msgCancelled, nil)
		}
		if session.Edit.Field == store.EditFieldTitle {
			return s.handleTitleEdit(ctx, session, userID, text)
		}
	}

	if session.Mode == store.ModeAwaitingSearch {
		return s.handleSearchKeyword(ctx, session, text)
	}

	if strings.HasPrefix(text, "/") {
		return s.handleCommand(ctx, session, text)
	}
	return s.createTask(ctx, session, userID, text)
}

func (s *taskbotService) handleCommand(ctx context.Context, session *store.Session, text string) error {
	command, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	switch command {
	case "/start", "/help":
		return s.send(ctx, session.ChatID, taskbotHelp, nil)
	case "/list":
		return s.listRecent(ctx, session.ChatID)
	case "/search":
		if args != "" {
			return s.searchTasks(ctx, session.ChatID, args)
		}
		session.Mode = store.ModeAwaitingSearch
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, "What should I search for? Send a keyword, or /cancel.", nil)
	case "/delete":
		return s.send(ctx, session.ChatID, "Use /list or /search to find a task, then press its Delete button.", nil)
	case "/cancel":
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		return s.send(ctx, session.ChatID, msgCancelled, nil)
	}
	return s.send(ctx, session.ChatID, "Unknown command. Try /help.", nil)
}

// createTask is the default branch: any plain text becomes a pending task
// with Medium priority.
func (s *taskbotService) createTask(ctx context.Context, session *store.Session, userID int64, text string) error {
	if text == "" || utf8.RuneCountInString(text) > maxTaskTitleLength {
		prompt := fmt.Sprintf("Task text must be 1-%d characters.", maxTaskTitleLength)
		return s.send(ctx, session.ChatID, prompt, nil)
	}

	nr := nextSequence(ctx, s.docs, s.databaseID, s.logger)
	props := mapper.TaskProperties(text, entity.TaskStatusPending, entity.PriorityMedium, time.Now(), nr)
	page, err := s.docs.CreatePage(ctx, s.databaseID, props)
	if err != nil {
		s.logger.Error("taskbot", "Failed to create task", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, session.ChatID, "Couldn't save the task. Please send it again.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "task",
		Action:     dto.RecordActionCreated,
		RecordID:   page.ID,
		Title:      text,
		ChatID:     session.ChatID,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	return s.send(ctx, session.ChatID, fmt.Sprintf("Task saved: %s", text), &telegram.SendOptions{
		ReplyMarkup: taskActionKeyboard(page.ID),
	})
}

// handleTitleEdit consumes the next free text as the new title for the task
// under edit. Success and /cancel both exit the editing mode; a store failure
// keeps the mode so the user can retry.
func (s *taskbotService) handleTitleEdit(ctx context.Context, session *store.Session, userID int64, text string) error {
	if text == "" || utf8.RuneCountInString(text) > maxTaskTitleLength {
		prompt := fmt.Sprintf("Titles must be 1-%d characters. Try again, or /cancel.", maxTaskTitleLength)
		return s.send(ctx, session.ChatID, prompt, nil)
	}

	recordID := session.Edit.RecordID
	if _, err := s.docs.UpdatePage(ctx, recordID, notion.Properties{
		mapper.PropTitle: notion.TitleProperty(text),
	}); err != nil {
		s.logger.Error("taskbot", "Failed to update title", map[string]interface{}{
			"record_id": recordID,
			"error":     err.Error(),
		})
		return s.send(ctx, session.ChatID, "Couldn't update the title. Try again, or /cancel.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "task",
		Action:     dto.RecordActionUpdated,
		RecordID:   recordID,
		Title:      text,
		ChatID:     session.ChatID,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	session.Reset()
	saveSession(ctx, s.sessions, session, s.logger)
	return s.send(ctx, session.ChatID, fmt.Sprintf("Title updated: %s", text), nil)
}

func (s *taskbotService) handleSearchKeyword(ctx context.Context, session *store.Session, text string) error {
	session.Mode = store.ModeNormal
	saveSession(ctx, s.sessions, session, s.logger)

	if text == "/cancel" {
		return s.send(ctx, session.ChatID, msgCancelled, nil)
	}
	return s.searchTasks(ctx, session.ChatID, text)
}

func (s *taskbotService) searchTasks(ctx context.Context, chatID int64, keyword string) error {
	pages, err := s.docs.QueryDatabase(ctx, s.databaseID, notion.Query{
		Filter:   notion.TitleContains(mapper.PropTitle, keyword),
		PageSize: listPageSize,
	})
	if err != nil {
		s.logger.Error("taskbot", "Search failed", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, chatID, msgGenericError, nil)
	}
	if len(pages) == 0 {
		return s.send(ctx, chatID, fmt.Sprintf("No tasks found for %q.", keyword), nil)
	}

	for _, page := range pages {
		record := mapper.TaskFromPage(page)
		if err := s.send(ctx, chatID, formatTask(record), &telegram.SendOptions{
			ReplyMarkup: taskActionKeyboard(record.ID),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *taskbotService) listRecent(ctx context.Context, chatID int64) error {
	pages, err := s.docs.QueryDatabase(ctx, s.databaseID, notion.Query{
		Sorts:    []notion.Sort{{Property: mapper.PropCreated, Direction: "descending"}},
		PageSize: listPageSize,
	})
	if err != nil {
		s.logger.Error("taskbot", "List failed", map[string]interface{}{"error": err.Error()})
		return s.send(ctx, chatID, msgGenericError, nil)
	}
	if len(pages) == 0 {
		return s.send(ctx, chatID, "No tasks yet.", nil)
	}

	var b strings.Builder
	b.WriteString("Recent tasks:\n")
	for _, page := range pages {
		record := mapper.TaskFromPage(page)
		if record.SequenceNumber > 0 {
			fmt.Fprintf(&b, "#%d %s\n", record.SequenceNumber, formatTask(record))
		} else {
			b.WriteString(formatTask(record) + "\n")
		}
	}
	return s.send(ctx, chatID, b.String(), nil)
}

func (s *taskbotService) handleCallback(ctx context.Context, cb *dto.CallbackQuery) error {
	if cb.Message == nil {
		return s.answer(ctx, cb.ID, "")
	}
	chatID := cb.Message.Chat.ID

	if err := s.guard.Authorize(cb.From.ID); err != nil {
		return s.answer(ctx, cb.ID, msgNotAuthorized)
	}

	session := loadSession(ctx, s.sessions, chatID, s.logger)

	switch callback := entity.ParseCallback(cb.Data); callback.Kind {
	case entity.CallbackDone:
		return s.markDone(ctx, cb, chatID, callback.Value)

	case entity.CallbackEdit:
		session.Reset()
		session.Mode = store.ModeEditing
		session.Edit = &store.EditTarget{RecordID: callback.Value, Field: store.EditFieldChoice}
		saveSession(ctx, s.sessions, session, s.logger)
		if err := s.answer(ctx, cb.ID, ""); err != nil {
			return err
		}
		keyboard := telegram.Keyboard(
			telegram.Row(
				telegram.Button("✏️ Title", entity.EditTitleCallback(callback.Value)),
				telegram.Button("⚡ Priority", entity.EditPriorityCallback(callback.Value)),
			),
			telegram.Row(telegram.Button("Cancel", entity.CancelCallback())),
		)
		return s.send(ctx, chatID, "What do you want to change?", &telegram.SendOptions{ReplyMarkup: keyboard})

	case entity.CallbackEditTitle:
		session.Reset()
		session.Mode = store.ModeEditing
		session.Edit = &store.EditTarget{RecordID: callback.Value, Field: store.EditFieldTitle}
		saveSession(ctx, s.sessions, session, s.logger)
		if err := s.answer(ctx, cb.ID, ""); err != nil {
			return err
		}
		return s.send(ctx, chatID, "Send the new title, or /cancel.", nil)

	case entity.CallbackEditPriority:
		session.Reset()
		session.Mode = store.ModeEditing
		session.Edit = &store.EditTarget{RecordID: callback.Value, Field: store.EditFieldPriority}
		saveSession(ctx, s.sessions, session, s.logger)
		if err := s.answer(ctx, cb.ID, ""); err != nil {
			return err
		}
		return s.send(ctx, chatID, "Pick a priority:", &telegram.SendOptions{
			ReplyMarkup: priorityKeyboard(callback.Value),
		})

	case entity.CallbackPriority:
		return s.setPriority(ctx, cb, session, callback.Value, callback.Priority)

	case entity.CallbackDelete:
		return s.archiveTask(ctx, cb, chatID, callback.Value)

	case entity.CallbackCancel:
		session.Reset()
		saveSession(ctx, s.sessions, session, s.logger)
		if err := s.answer(ctx, cb.ID, msgCancelled); err != nil {
			return err
		}
		return s.send(ctx, chatID, msgCancelled, nil)
	}

	return s.answer(ctx, cb.ID, "")
}

func (s *taskbotService) markDone(ctx context.Context, cb *dto.CallbackQuery, chatID int64, recordID string) error {
	if _, err := s.docs.UpdatePage(ctx, recordID, notion.Properties{
		mapper.PropStatus: notion.SelectProperty(string(entity.TaskStatusDone)),
	}); err != nil {
		s.logger.Error("taskbot", "Failed to mark done", map[string]interface{}{
			"record_id": recordID,
			"error":     err.Error(),
		})
		if ansErr := s.answer(ctx, cb.ID, ""); ansErr != nil {
			return ansErr
		}
		return s.send(ctx, chatID, "Couldn't update the task. Please try again.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "task",
		Action:     dto.RecordActionUpdated,
		RecordID:   recordID,
		ChatID:     chatID,
		UserID:     cb.From.ID,
		OccurredAt: time.Now(),
	})

	if err := s.answer(ctx, cb.ID, "Done"); err != nil {
		return err
	}
	return s.send(ctx, chatID, "✅ Marked as done.", nil)
}

// setPriority exits the editing mode on success; on failure the session is
// left as-is so the keyboard can be pressed again.
func (s *taskbotService) setPriority(ctx context.Context, cb *dto.CallbackQuery, session *store.Session, recordID string, priority entity.TaskPriority) error {
	if _, err := s.docs.UpdatePage(ctx, recordID, notion.Properties{
		mapper.PropPriority: notion.SelectProperty(string(priority)),
	}); err != nil {
		s.logger.Error("taskbot", "Failed to set priority", map[string]interface{}{
			"record_id": recordID,
			"error":     err.Error(),
		})
		if ansErr := s.answer(ctx, cb.ID, ""); ansErr != nil {
			return ansErr
		}
		return s.send(ctx, session.ChatID, "Couldn't change the priority. Please try again.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "task",
		Action:     dto.RecordActionUpdated,
		RecordID:   recordID,
		ChatID:     session.ChatID,
		UserID:     cb.From.ID,
		OccurredAt: time.Now(),
	})

	session.Reset()
	saveSession(ctx, s.sessions, session, s.logger)
	if err := s.answer(ctx, cb.ID, ""); err != nil {
		return err
	}
	return s.send(ctx, session.ChatID, fmt.Sprintf("Priority set to %s.", priority), nil)
}

func (s *taskbotService) archiveTask(ctx context.Context, cb *dto.CallbackQuery, chatID int64, recordID string) error {
	if err := s.docs.ArchivePage(ctx, recordID); err != nil {
		s.logger.Error("taskbot", "Failed to archive task", map[string]interface{}{
			"record_id": recordID,
			"error":     err.Error(),
		})
		if ansErr := s.answer(ctx, cb.ID, ""); ansErr != nil {
			return ansErr
		}
		return s.send(ctx, chatID, "Couldn't delete that task. Please try again.", nil)
	}

	s.publisher.PublishRecordEvent(dto.RecordEventPayload{
		EventID:    uuid.NewString(),
		Kind:       "task",
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

func (s *taskbotService) replyGuardError(ctx context.Context, chatID, userID int64, err error) error {
	var rateErr *RateLimitedError
	if errors.As(err, &rateErr) {
		s.logger.Warn("taskbot", "Rate limited", map[string]interface{}{"user_id": userID})
		text := fmt.Sprintf("Slow down: at most %d messages per %s. Requests left: %d.",
			rateErr.MaxRequests, rateErr.Window, rateErr.Remaining)
		return s.send(ctx, chatID, text, nil)
	}
	s.logger.Warn("taskbot", "Unauthorized user", map[string]interface{}{"user_id": userID})
	return s.send(ctx, chatID, msgNotAuthorized, nil)
}

func (s *taskbotService) send(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) error {
	if err := s.messenger.SendMessage(ctx, chatID, text, opts); err != nil {
		s.logger.Error("taskbot", "Failed to send message", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func (s *taskbotService) answer(ctx context.Context, callbackQueryID, text string) error {
	if err := s.messenger.AnswerCallbackQuery(ctx, callbackQueryID, text); err != nil {
		s.logger.Error("taskbot", "Failed to answer callback", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func taskActionKeyboard(recordID string) *telegram.InlineKeyboardMarkup {
	return telegram.Keyboard(
		telegram.Row(
			telegram.Button("✅ Mark Done", entity.DoneCallback(recordID)),
			telegram.Button("✏️ Edit", entity.EditCallback(recordID)),
			telegram.Button("🗑 Delete", entity.DeleteCallback(recordID)),
		),
	)
}

func priorityKeyboard(recordID string) *telegram.InlineKeyboardMarkup {
	return telegram.Keyboard(
		telegram.Row(
			telegram.Button("🔴 High", entity.PriorityCallback(recordID, entity.PriorityHigh)),
			telegram.Button("🟡 Medium", entity.PriorityCallback(recordID, entity.PriorityMedium)),
			telegram.Button("🟢 Low", entity.PriorityCallback(recordID, entity.PriorityLow)),
		),
		telegram.Row(telegram.Button("Cancel", entity.CancelCallback())),
	)
}

func formatTask(record entity.TaskRecord) string {
	status := "⬜"
	if record.Status == entity.TaskStatusDone {
		status = "✅"
	}
	return fmt.Sprintf("%s %s [%s]", status, record.Title, record.Priority)
}
