package service

import (
	"context"

	"github.com/mustafa-mbari/TeleChat/internal/dto"
	"github.com/mustafa-mbari/TeleChat/pkg/notion"
	"github.com/mustafa-mbari/TeleChat/pkg/telegram"
)

// Hand-written fakes for the two external collaborators and the event bus.

type sentMessage struct {
	ChatID int64
	Text   string
	Opts   *telegram.SendOptions
}

type mockMessenger struct {
	sent     []sentMessage
	answered []string
	sendErr  error
}

func (m *mockMessenger) SendMessage(_ context.Context, chatID int64, text string, opts *telegram.SendOptions) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (m *mockMessenger) EditMessageText(_ context.Context, chatID int64, _ int64, text string, opts *telegram.SendOptions) error {
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (m *mockMessenger) AnswerCallbackQuery(_ context.Context, callbackQueryID string, _ string) error {
	m.answered = append(m.answered, callbackQueryID)
	return nil
}

func (m *mockMessenger) lastSent() sentMessage {
	return m.sent[len(m.sent)-1]
}

type createdPage struct {
	DatabaseID string
	Props      notion.Properties
}

type updatedPage struct {
	PageID string
	Props  notion.Properties
}

type mockDocs struct {
	queryFn      func(databaseID string, q notion.Query) ([]notion.Page, error)
	created      []createdPage
	createErr    error
	updated      []updatedPage
	updateErr    error
	archived     []string
	archiveErr   error
	options      []string
	addedOptions []string
	listErr      error
	addErr       error
}

func (m *mockDocs) CreatePage(_ context.Context, databaseID string, props notion.Properties) (*notion.Page, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, createdPage{DatabaseID: databaseID, Props: props})
	return &notion.Page{ID: "page-1", Properties: props}, nil
}

func (m *mockDocs) QueryDatabase(_ context.Context, databaseID string, q notion.Query) ([]notion.Page, error) {
	if m.queryFn != nil {
		return m.queryFn(databaseID, q)
	}
	return nil, nil
}

func (m *mockDocs) UpdatePage(_ context.Context, pageID string, props notion.Properties) (*notion.Page, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updated = append(m.updated, updatedPage{PageID: pageID, Props: props})
	return &notion.Page{ID: pageID, Properties: props}, nil
}

func (m *mockDocs) ArchivePage(_ context.Context, pageID string) error {
	if m.archiveErr != nil {
		return m.archiveErr
	}
	m.archived = append(m.archived, pageID)
	return nil
}

func (m *mockDocs) ListSelectOptions(_ context.Context, _, _ string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.options, nil
}

func (m *mockDocs) AddSelectOption(_ context.Context, _, _, name string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.addedOptions = append(m.addedOptions, name)
	return nil
}

type mockPublisher struct {
	events []dto.RecordEventPayload
}

func (m *mockPublisher) PublishRecordEvent(payload dto.RecordEventPayload) {
	m.events = append(m.events, payload)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
