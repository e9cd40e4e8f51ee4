package controller

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mustafa-mbari/TeleChat/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	updates []*dto.Update
	err     error
}

func (s *stubEngine) HandleUpdate(_ context.Context, upd *dto.Update) error {
	s.updates = append(s.updates, upd)
	return s.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestApp(linkbot, taskbot *stubEngine, secret string) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	NewWebhookController(linkbot, taskbot, nopLogger{}, secret).RegisterRoutes(api)
	return app
}

const updateJSON = `{"update_id":1,"message":{"message_id":5,"from":{"id":42},"chat":{"id":100},"text":"hello"}}`

func TestWebhookDispatchesToLinkbot(t *testing.T) {
	linkbot := &stubEngine{}
	app := newTestApp(linkbot, &stubEngine{}, "")

	req := httptest.NewRequest("POST", "/api/webhook/v1/links", strings.NewReader(updateJSON))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, linkbot.updates, 1)
	assert.Equal(t, "hello", linkbot.updates[0].Message.Text)
}

func TestWebhookAnswers200OnEngineError(t *testing.T) {
	// The platform retries non-200 deliveries; engine failures must not leak.
	taskbot := &stubEngine{err: errors.New("store down")}
	app := newTestApp(&stubEngine{}, taskbot, "")

	req := httptest.NewRequest("POST", "/api/webhook/v1/tasks", strings.NewReader(updateJSON))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, taskbot.updates, 1)
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	linkbot := &stubEngine{}
	app := newTestApp(linkbot, &stubEngine{}, "s3cret")

	req := httptest.NewRequest("POST", "/api/webhook/v1/links", strings.NewReader(updateJSON))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretTokenHeader, "wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, linkbot.updates)
}

func TestWebhookAcceptsCorrectSecret(t *testing.T) {
	linkbot := &stubEngine{}
	app := newTestApp(linkbot, &stubEngine{}, "s3cret")

	req := httptest.NewRequest("POST", "/api/webhook/v1/links", strings.NewReader(updateJSON))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretTokenHeader, "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, linkbot.updates, 1)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	app := newTestApp(&stubEngine{}, &stubEngine{}, "")

	req := httptest.NewRequest("POST", "/api/webhook/v1/links", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookRejectsUpdateWithoutID(t *testing.T) {
	app := newTestApp(&stubEngine{}, &stubEngine{}, "")

	req := httptest.NewRequest("POST", "/api/webhook/v1/links", strings.NewReader(`{"message":{"chat":{"id":100}}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&stubEngine{}, &stubEngine{}, "")

	req := httptest.NewRequest("GET", "/api/health/v1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
