package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mustafa-mbari/TeleChat/internal/entity"
	"github.com/mustafa-mbari/TeleChat/internal/mapper"
	"github.com/mustafa-mbari/TeleChat/internal/repository/memory"
	"github.com/mustafa-mbari/TeleChat/internal/service/ratelimit"
	"github.com/mustafa-mbari/TeleChat/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskbotFixture struct {
	svc       ITaskbotService
	sessions  *memory.SessionRepository
	messenger *mockMessenger
	docs      *mockDocs
	publisher *mockPublisher
}

func newTaskbotFixture(t *testing.T, docs *mockDocs) *taskbotFixture {
	t.Helper()
	sessions := memory.NewSessionRepository()
	windows := memory.NewRateWindowRepository(time.Minute)
	limiter := ratelimit.NewLimiter(windows, 100, time.Minute)
	guard := NewGuard([]int64{testUserID}, limiter, 100, time.Minute)
	messenger := &mockMessenger{}
	publisher := &mockPublisher{}
	svc := NewTaskbotService(sessions, guard, messenger, docs, publisher, nopLogger{}, "tasks-db")
	return &taskbotFixture{svc: svc, sessions: sessions, messenger: messenger, docs: docs, publisher: publisher}
}

func (f *taskbotFixture) session(t *testing.T) *store.Session {
	t.Helper()
	session, err := f.sessions.Get(context.Background(), testChatID)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func TestTaskbotPlainTextCreatesTask(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("Buy milk")))

	require.Len(t, docs.created, 1)
	props := docs.created[0].Props
	assert.Equal(t, "Buy milk", props[mapper.PropTitle].Title[0].Text.Content)
	assert.Equal(t, string(entity.TaskStatusPending), props[mapper.PropStatus].Select.Name)
	assert.Equal(t, string(entity.PriorityMedium), props[mapper.PropPriority].Select.Name)

	keyboard := f.messenger.lastSent().Opts.ReplyMarkup
	require.NotNil(t, keyboard)
	row := keyboard.InlineKeyboard[0]
	require.Len(t, row, 3)
	assert.Equal(t, "done:page-1", row[0].CallbackData)
	assert.Equal(t, "edit:page-1", row[1].CallbackData)
	assert.Equal(t, "delete:page-1", row[2].CallbackData)
}

func TestTaskbotDoneButton(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("done:t1")))

	require.Len(t, docs.updated, 1)
	assert.Equal(t, "t1", docs.updated[0].PageID)
	assert.Equal(t, string(entity.TaskStatusDone), docs.updated[0].Props[mapper.PropStatus].Select.Name)
	assert.Equal(t, []string{"cb-1"}, f.messenger.answered)
}

func TestTaskbotEditOpensChoiceMenu(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("edit:t1")))

	session := f.session(t)
	assert.Equal(t, store.ModeEditing, session.Mode)
	require.NotNil(t, session.Edit)
	assert.Equal(t, "t1", session.Edit.RecordID)
	assert.Equal(t, store.EditFieldChoice, session.Edit.Field)

	keyboard := f.messenger.lastSent().Opts.ReplyMarkup
	require.NotNil(t, keyboard)
	assert.Equal(t, "edit_title:t1", keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "edit_priority:t1", keyboard.InlineKeyboard[0][1].CallbackData)
}

func TestTaskbotTitleEditFlow(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("edit_title:t1")))
	assert.Equal(t, store.EditFieldTitle, f.session(t).Edit.Field)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("Buy oat milk")))

	require.Len(t, docs.updated, 1)
	assert.Equal(t, "Buy oat milk", docs.updated[0].Props[mapper.PropTitle].Title[0].Text.Content)
	// Successful title update exits the editing mode.
	session := f.session(t)
	assert.Equal(t, store.ModeNormal, session.Mode)
	assert.Nil(t, session.Edit)
	// The edit updated the existing record; no new task was created.
	assert.Empty(t, docs.created)
}

func TestTaskbotTitleEditFailureKeepsMode(t *testing.T) {
	docs := &mockDocs{updateErr: assert.AnError}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("edit_title:t1")))
	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("New title")))

	session := f.session(t)
	assert.Equal(t, store.ModeEditing, session.Mode)
	require.NotNil(t, session.Edit)
	assert.Contains(t, f.messenger.lastSent().Text, "Try again")
}

func TestTaskbotPrioritySelection(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("edit_priority:t1")))
	keyboard := f.messenger.lastSent().Opts.ReplyMarkup
	require.NotNil(t, keyboard)
	assert.Equal(t, "priority:t1:High", keyboard.InlineKeyboard[0][0].CallbackData)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("priority:t1:High")))

	require.Len(t, docs.updated, 1)
	assert.Equal(t, string(entity.PriorityHigh), docs.updated[0].Props[mapper.PropPriority].Select.Name)
	session := f.session(t)
	assert.Equal(t, store.ModeNormal, session.Mode)
	assert.Nil(t, session.Edit)
}

func TestTaskbotFreeTextDuringChoiceCreatesTask(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("edit:t1")))
	// Only a title edit intercepts free text; during the choice menu a new
	// message is just a new task.
	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("Water the plants")))

	require.Len(t, docs.created, 1)
	assert.Equal(t, "Water the plants", docs.created[0].Props[mapper.PropTitle].Title[0].Text.Content)
	assert.Empty(t, docs.updated)
}

func TestTaskbotEditCancel(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), callbackUpdate("edit_title:t1")))
	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("/cancel")))

	session := f.session(t)
	assert.Equal(t, store.ModeNormal, session.Mode)
	assert.Nil(t, session.Edit)
	assert.Empty(t, docs.updated)
}

func TestTaskbotMultibyteTitleWithinLimit(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	// 150 Cyrillic runes are 300 bytes; the limit counts characters.
	title := strings.Repeat("я", 150)
	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate(title)))

	require.Len(t, docs.created, 1)
	assert.Equal(t, title, docs.created[0].Props[mapper.PropTitle].Title[0].Text.Content)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate(strings.Repeat("я", maxTaskTitleLength+1))))
	require.Len(t, docs.created, 1)
	assert.Contains(t, f.messenger.lastSent().Text, "1-")
}

func TestTaskbotEmptyTextRejected(t *testing.T) {
	docs := &mockDocs{}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("   ")))

	assert.Empty(t, docs.created)
	assert.Contains(t, f.messenger.lastSent().Text, "1-")
}

func TestTaskbotCreateFailureReportsError(t *testing.T) {
	docs := &mockDocs{createErr: assert.AnError}
	f := newTaskbotFixture(t, docs)

	require.NoError(t, f.svc.HandleUpdate(context.Background(), textUpdate("Buy milk")))

	assert.Contains(t, f.messenger.lastSent().Text, "Couldn't save")
	assert.Empty(t, f.publisher.events)
}
