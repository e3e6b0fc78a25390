package bootstrap

import (
	"context"
	"log"
	"os"
	"strings"

	"exam-prep-be/internal/config"
	"exam-prep-be/internal/controller"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/internal/pkg/serverutils"
	"exam-prep-be/internal/repository/memory"
	"exam-prep-be/internal/repository/unitofwork"
	"exam-prep-be/internal/service"
	"exam-prep-be/pkg/generation"
	genEvents "exam-prep-be/pkg/generation/events"
	"exam-prep-be/pkg/generator"
	"exam-prep-be/pkg/llm/factory"
	"exam-prep-be/pkg/lock"
	pktNats "exam-prep-be/pkg/nats"
	"exam-prep-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	GenerationController controller.IGenerationController
	SyllabusController   controller.ISyllabusController

	// Services, also used directly by the CLI
	GenerationService service.IGenerationService
	SyllabusService   service.ISyllabusService
	ContentStore      service.IContentStore

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Sweeper         *service.DedupSweeper

	Logger    logger.ILogger
	GenLogger *logger.ZapLogger

	closers []func()
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newLocker(cfg *config.Config, sysLogger logger.ILogger) (lock.Locker, func()) {
	if cfg.App.RedisURL == "" {
		sysLogger.Info("BOOT", "Using in-process generation locks", nil)
		return lock.NewMemoryLocker(), func() {}
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sysLogger.Warn("BOOT", "Redis unreachable, falling back to in-process locks", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return lock.NewMemoryLocker(), func() {}
	}
	return lock.NewRedisLocker(rdb, "exam-prep:gen:"), func() { _ = rdb.Close() }
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	genLogger := logger.NewIsolatedLogger(cfg.App.GenerationLogPath)
	c.Logger, c.GenLogger = sysLogger, genLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync(); _ = genLogger.Sync() })

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	var sink genEvents.Sink
	if natsPub != nil {
		sink = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	var eventSource service.EventSource
	if natsSub != nil {
		eventSource = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}
	eventPublisher := genEvents.NewNatsPublisher(sink, sysLogger)

	locker, closeLocker := newLocker(cfg, sysLogger)
	c.closers = append(c.closers, closeLocker)

	cache := memory.NewContentCache(cfg.Generation.CacheTTL)
	store := service.NewContentStore(uowFactory, cache, retry.DefaultPolicy(), sysLogger)
	c.ContentStore = store

	// 3. Generation Pipeline
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  providerBaseURL(cfg),
		APIKey:   providerAPIKey(cfg),
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	genCfg := generator.DefaultConfig()
	genCfg.BatchSize = cfg.Generation.BatchSize
	genCfg.Language = cfg.Ai.Language
	genCfg.Temperature = cfg.Ai.Temperature
	llmGenerator := generator.NewLLMGenerator(llmProvider, genLogger, genCfg)

	coordinator := generation.NewCoordinator(store, llmGenerator, locker, genLogger, generation.Config{
		Policy:      cfg.Generation.Policy,
		MaxAttempts: cfg.Generation.MaxAttempts,
		LockTTL:     cfg.Generation.LockTTL,
	})

	// 4. Services
	generationService := service.NewGenerationService(uowFactory, store, coordinator, eventPublisher, cfg.Generation, genLogger)
	syllabusService := service.NewSyllabusService(uowFactory, store, eventPublisher, cfg.Generation.TopicCap, sysLogger)
	c.GenerationService, c.SyllabusService = generationService, syllabusService

	// Async syllabus batches run in-process on a go channel
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	hostname, _ := os.Hostname()
	publisherService := service.NewPublisherService(cfg.Keys.BatchTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Keys.BatchTopic,
		generationService,
		store,
		eventSource,
		"content-cache-"+strings.NewReplacer(".", "-", "*", "-", ">", "-").Replace(hostname),
		sysLogger,
	)
	c.Sweeper = service.NewDedupSweeper(uowFactory, generationService, cfg.Sweep.Concurrency, sysLogger)

	// 5. Controllers
	auth := serverutils.JwtMiddleware(cfg.Keys.JwtSecret)
	c.GenerationController = controller.NewGenerationController(generationService, publisherService, cfg.Generation, auth)
	c.SyllabusController = controller.NewSyllabusController(syllabusService, auth)

	return c
}

func providerBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.HuggingFaceBaseURL
}

func providerAPIKey(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "anthropic" {
		return cfg.Keys.Anthropic
	}
	return cfg.Keys.HuggingFace
}
