package controller

import (
	"context"
	"crypto/subtle"

	"github.com/mustafa-mbari/TeleChat/internal/dto"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/logger"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/serverutils"
	"github.com/mustafa-mbari/TeleChat/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	LinkUpdates(ctx *fiber.Ctx) error
	TaskUpdates(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type webhookController struct {
	linkbot       service.ILinkbotService
	taskbot       service.ITaskbotService
	logger        logger.ILogger
	webhookSecret string
}

func NewWebhookController(
	linkbot service.ILinkbotService,
	taskbot service.ITaskbotService,
	sysLogger logger.ILogger,
	webhookSecret string,
) IWebhookController {
	return &webhookController{
		linkbot:       linkbot,
		taskbot:       taskbot,
		logger:        sysLogger,
		webhookSecret: webhookSecret,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	h.Post("links", c.LinkUpdates)
	h.Post("tasks", c.TaskUpdates)
	r.Get("/health/v1", c.Health)
}

func (c *webhookController) LinkUpdates(ctx *fiber.Ctx) error {
	return c.handle(ctx, "linkbot", c.linkbot.HandleUpdate)
}

func (c *webhookController) TaskUpdates(ctx *fiber.Ctx) error {
	return c.handle(ctx, "taskbot", c.taskbot.HandleUpdate)
}

func (c *webhookController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"status": "healthy"}))
}

// handle always answers 200 once the payload parses: the chat platform
// retries non-200 deliveries and the engines already reported any failure to
// the user directly.
func (c *webhookController) handle(ctx *fiber.Ctx, bot string, engine func(context.Context, *dto.Update) error) error {
	if !c.secretMatches(ctx) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid webhook secret"))
	}

	var upd dto.Update
	if err := ctx.BodyParser(&upd); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&upd); err != nil {
		return err
	}

	invocationID := uuid.NewString()
	if err := engine(ctx.Context(), &upd); err != nil {
		c.logger.Error(bot, "Update handling failed", map[string]interface{}{
			"invocation_id": invocationID,
			"update_id":     upd.UpdateID,
			"chat_id":       upd.ChatID(),
			"error":         err.Error(),
		})
	} else {
		c.logger.Info(bot, "Update handled", map[string]interface{}{
			"invocation_id": invocationID,
			"update_id":     upd.UpdateID,
			"chat_id":       upd.ChatID(),
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"invocation_id": invocationID}))
}

func (c *webhookController) secretMatches(ctx *fiber.Ctx) bool {
	if c.webhookSecret == "" {
		return true
	}
	got := ctx.Get(secretTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.webhookSecret)) == 1
}
