package bootstrap

import (
	"context"
	"log"

	"github.com/mustafa-mbari/TeleChat/internal/config"
	"github.com/mustafa-mbari/TeleChat/internal/controller"
	"github.com/mustafa-mbari/TeleChat/internal/pkg/logger"
	"github.com/mustafa-mbari/TeleChat/internal/repository/contract"
	"github.com/mustafa-mbari/TeleChat/internal/repository/memory"
	"github.com/mustafa-mbari/TeleChat/internal/repository/redisrepo"
	"github.com/mustafa-mbari/TeleChat/internal/service"
	"github.com/mustafa-mbari/TeleChat/internal/service/ratelimit"
	"github.com/mustafa-mbari/TeleChat/pkg/notion"
	"github.com/mustafa-mbari/TeleChat/pkg/telegram"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	WebhookController controller.IWebhookController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Session backend (memory by default, redis for multi-instance setups)
	var sessions contract.SessionStore
	if cfg.App.SessionBackend == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessions = redisrepo.NewSessionRepository(rdb, 0)
		log.Println("[INFO] Using Session Backend: REDIS")
	} else {
		sessions = memory.NewSessionRepository()
		log.Println("[INFO] Using Session Backend: MEMORY")
	}

	// 4. Rate limiting + authorization guard
	rateWindows := memory.NewRateWindowRepository(cfg.Limits.Window)
	limiter := ratelimit.NewLimiter(rateWindows, cfg.Limits.MaxRequests, cfg.Limits.Window)
	guard := service.NewGuard(cfg.Telegram.AllowedUserIDs, limiter, cfg.Limits.MaxRequests, cfg.Limits.Window)

	// 5. External clients
	docs := notion.NewClient(cfg.Notion.APIBaseURL, cfg.Notion.Token, cfg.Notion.Version)
	linkMessenger := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.LinkBotToken)
	taskMessenger := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.TaskBotToken)

	// 6. Services
	publisher := service.NewPublisherService(pubSub, cfg.App.RecordEventsTopic, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.App.RecordEventsTopic, sysLogger)

	linkbot := service.NewLinkbotService(
		sessions, guard, linkMessenger, docs, publisher, sysLogger,
		cfg.Notion.LinksDatabaseID, cfg.Notion.CategoryProperty,
	)
	taskbot := service.NewTaskbotService(
		sessions, guard, taskMessenger, docs, publisher, sysLogger,
		cfg.Notion.TasksDatabaseID,
	)

	// 7. Controllers
	webhookController := controller.NewWebhookController(linkbot, taskbot, sysLogger, cfg.Telegram.WebhookSecret)

	return &Container{
		WebhookController: webhookController,
		ConsumerService:   consumerService,
		Logger:            sysLogger,
	}
}
