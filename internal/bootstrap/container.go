package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-voice-assistant-be/internal/config"
	"ai-voice-assistant-be/internal/controller"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/pkg/mailer"
	"ai-voice-assistant-be/internal/pkg/serverutils"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/internal/service"
	"ai-voice-assistant-be/internal/session"
	"ai-voice-assistant-be/internal/websocket"
	"ai-voice-assistant-be/pkg/events"
	"ai-voice-assistant-be/pkg/vapi"

	pktNats "ai-voice-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionEventsChannel = "voice_session_events"

type Container struct {
	Logger logger.ILogger

	// Controllers
	HealthController       controller.IHealthController
	UserController         controller.IUserController
	VoiceController        controller.IVoiceController
	ConversationController controller.IConversationController

	// Background Services (Exposed for main.go to run)
	ReconcileService service.IReconcileService
	ActivityService  service.IActivityService

	// WebSockets & live sessions
	WebSocketHub *websocket.Hub
	Orchestrator *session.Orchestrator

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	sessionLogger := logger.NewIsolatedLogger(cfg.App.SessionLogFilePath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)
	if emailService == nil {
		log.Println("[INFO] SMTP host not set, conversation summaries disabled")
	}

	vapiClient := vapi.NewHTTPClient(cfg.Vapi.BaseURL, cfg.Vapi.PrivateKey, cfg.Vapi.RequestLimit)

	// 2. Event Bus (in-process, orphaned assistant reconciliation)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	c := &Container{Logger: sysLogger}

	// 3. Infrastructure
	// NATS. Interfaces stay nil when the broker is down so events are skipped.
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	var eventSubscriber service.EventSubscriber
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		eventSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	wsHub := websocket.NewHub(connectRedis(cfg.App.RedisURL), sessionEventsChannel, sessionLogger)

	// 4. Services
	orphanPublisher := service.NewPublisherService(cfg.Voice.OrphanedTopic, pubSub)
	assistantService := service.NewAssistantService(
		uowFactory,
		vapiClient,
		cfg.Vapi,
		cfg.Voice.MaxCallSeconds,
		orphanPublisher,
		eventPublisher,
		sysLogger,
	)
	quotaService := service.NewQuotaService(uowFactory, cfg.Voice.CallQuota)
	callService := service.NewCallService(
		uowFactory,
		quotaService,
		vapiClient,
		cfg.Voice.TranscriptDelay,
		emailService,
		eventPublisher,
		sysLogger,
	)
	conversationService := service.NewConversationService(uowFactory)
	userService := service.NewUserService(uowFactory, assistantService, eventPublisher, sysLogger)

	orchestrator := session.NewOrchestrator(
		session.Config{
			Ceiling:          time.Duration(cfg.Voice.MaxCallSeconds) * time.Second,
			Tick:             cfg.Voice.TickInterval,
			TerminateTimeout: cfg.Vapi.RequestLimit + cfg.Voice.TranscriptDelay,
		},
		service.NewCallTerminator(callService),
		wsHub,
		sessionLogger,
	)

	c.ReconcileService = service.NewReconcileService(
		pubSub,
		cfg.Voice.OrphanedTopic,
		uowFactory,
		vapiClient,
		service.RetryPolicy{},
		sysLogger,
	)
	c.ActivityService = service.NewActivityService(eventSubscriber, wsHub, sysLogger)
	c.WebSocketHub = wsHub
	c.Orchestrator = orchestrator

	// 5. Controllers
	c.HealthController = controller.NewHealthController(orchestrator.Active)
	c.UserController = controller.NewUserController(userService)
	c.ConversationController = controller.NewConversationController(conversationService)
	c.VoiceController = controller.NewVoiceController(
		assistantService,
		quotaService,
		callService,
		conversationService,
		orchestrator,
		wsHub,
		serverutils.AdminKeyMiddleware(cfg.Auth.AdminKeyHash),
		sysLogger,
	)

	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	return c
}

// Close releases broker connections and flushes the logger.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// connectRedis returns nil when Redis is unreachable; the hub then serves
// only the sockets connected to this instance.
func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (single-instance websocket delivery)", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
