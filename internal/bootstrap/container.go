package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-organizer-be/internal/config"
	"ai-organizer-be/internal/controller"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/internal/pkg/mailer"
	"ai-organizer-be/internal/repository/memory"
	"ai-organizer-be/internal/repository/unitofwork"
	"ai-organizer-be/internal/service"
	"ai-organizer-be/pkg/applyexec"
	"ai-organizer-be/pkg/breaker"
	"ai-organizer-be/pkg/gateway"
	pktNats "ai-organizer-be/pkg/nats"
	"ai-organizer-be/pkg/provider"
	"ai-organizer-be/pkg/provider/factory"
	"ai-organizer-be/pkg/retry"
	"ai-organizer-be/pkg/telemetry"
	"ai-organizer-be/pkg/workflow"
	"ai-organizer-be/pkg/workflow/idempotency"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	JobController      controller.IJobController
	ProposalController controller.IProposalController

	// Background services (exposed for main.go to run)
	AnalyticsConsumerService service.IAnalyticsConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.ReviewerEmail,
		cfg.App.BaseURL,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (telemetry stream; optional)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	var sink telemetry.Sink = telemetry.Noop{}
	if natsPub != nil {
		sink = pktNats.NewSink(natsPub, sysLogger)
	}

	// Redis (status read-through cache; optional)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Status cache disabled", err)
		rdb = nil
	}

	// 3. Provider gateway
	providers := buildProviders(cfg, sysLogger)
	policy := retry.NewPolicy(
		cfg.Retry.MaxAttempts,
		time.Duration(cfg.Retry.InitialDelayMs)*time.Millisecond,
		cfg.Retry.BackoffFactor,
	)
	providerGateway := gateway.New(providers, breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Cooldown:         time.Duration(cfg.Breaker.CooldownMs) * time.Millisecond,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
	}, policy, sink, sysLogger)

	// 4. Engine components
	baseUow := uowFactory.NewUnitOfWork(context.Background())

	applyManager := applyexec.NewManager(applyexec.NewOsStorage(policy), sink, sysLogger)
	registry, err := workflow.NewRegistry(
		workflow.NewSourcesHandler(baseUow.FileIndexRepository()),
		workflow.NewIndexExtractHandler(baseUow.FileIndexRepository()),
		workflow.NewSummarizeHandler(baseUow.FileIndexRepository(), providerGateway),
		workflow.NewProposalsHandler(
			baseUow.FileIndexRepository(),
			baseUow.ProposalRepository(),
			providerGateway,
			emailService,
			sysLogger,
		),
		workflow.NewReviewHandler(baseUow.ProposalRepository()),
		workflow.NewApplyHandler(
			applyManager,
			baseUow.FileIndexRepository(),
			baseUow.ProposalRepository(),
			baseUow.ActionGroupRepository(),
			baseUow.AuditActionRepository(),
			cfg.Apply.LibraryRoot,
			sysLogger,
		),
		workflow.NewAnalyticsHandler(
			baseUow.ProposalRepository(),
			baseUow.AuditActionRepository(),
			baseUow.JobEventRepository(),
		),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build step registry: %v", err)
	}

	ledger := idempotency.NewLedger(baseUow.IdempotencyRepository(), memory.NewClaimRegistry(), sysLogger)
	locks := memory.NewLockRegistry()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.StepEventTopic, pubSub)
	analyticsConsumerService := service.NewAnalyticsConsumerService(
		pubSub,
		cfg.App.StepEventTopic,
		uowFactory,
		sysLogger,
	)

	jobService := service.NewJobService(
		uowFactory,
		registry,
		ledger,
		locks,
		publisherService,
		rdb,
		sysLogger,
	)
	proposalService := service.NewProposalService(uowFactory, sysLogger)

	// 6. Controllers
	return &Container{
		JobController:      controller.NewJobController(jobService),
		ProposalController: controller.NewProposalController(proposalService),

		AnalyticsConsumerService: analyticsConsumerService,
	}
}

// buildProviders resolves the primary provider plus the optional failover.
func buildProviders(cfg *config.Config, sysLogger logger.ILogger) []provider.LLMProvider {
	var providers []provider.LLMProvider

	primary, err := factory.NewLLMProvider(cfg.Ai.PrimaryProvider, cfg.Ai)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	providers = append(providers, primary)
	log.Printf("[INFO] Using LLM Provider: %s", primary.Name())

	if cfg.Ai.SecondaryProvider != "" && cfg.Ai.SecondaryProvider != cfg.Ai.PrimaryProvider {
		secondary, err := factory.NewLLMProvider(cfg.Ai.SecondaryProvider, cfg.Ai)
		if err != nil {
			sysLogger.Warn("bootstrap", "secondary provider unavailable", map[string]interface{}{
				"provider": cfg.Ai.SecondaryProvider,
				"error":    err.Error(),
			})
		} else {
			providers = append(providers, secondary)
			log.Printf("[INFO] Using failover LLM Provider: %s", secondary.Name())
		}
	}

	return providers
}
