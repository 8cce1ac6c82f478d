package bootstrap

import (
	"context"
	"fmt"
	"time"

	"tg-notes-bot/internal/config"
	"tg-notes-bot/internal/constant"
	"tg-notes-bot/internal/metrics"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/repository/contract"
	"tg-notes-bot/internal/repository/file"
	"tg-notes-bot/internal/repository/memory"
	redisRepo "tg-notes-bot/internal/repository/redis"
	"tg-notes-bot/internal/service"
	"tg-notes-bot/internal/transport/telegram"
	"tg-notes-bot/pkg/gas"
	"tg-notes-bot/pkg/music/yandex"
	pktNats "tg-notes-bot/pkg/nats"
	"tg-notes-bot/pkg/tagging/state"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
)

// Pending option prompts are forgotten after this long.
const pendingInputTTL = 10 * time.Minute

type Container struct {
	Logger   logger.ILogger
	Sessions contract.SessionRepository
	Options  *file.OptionRepository

	// Background services (run by cmd/bot)
	Adapter         *telegram.Adapter
	ConsumerService service.IConsumerService

	closers []func()
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", cfg.App.Timezone, err)
	}

	// 1. Update queue. Publishing blocks until the consumer acks, so updates are
	// handled one at a time in arrival order.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. Storage
	c.Options = file.NewOptionRepository(cfg.App.DataDir, sysLogger)
	c.Sessions, err = c.newSessionRepository(cfg)
	if err != nil {
		return nil, err
	}
	pending := memory.NewPendingInputRepository(pendingInputTTL)

	// 3. External collaborators
	sheet := gas.NewClient(cfg.Gas.BaseURL, cfg.Gas.DeploymentID, cfg.Gas.Timeout, sysLogger)
	resolver := yandex.NewYandexProvider(cfg.Music.YandexAPIURL, cfg.Music.YandexToken, cfg.Music.Timeout)

	// 4. Domain events (optional)
	var bus service.EventBus
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			bus = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}
	eventPublisher := service.NewEventPublisher(bus, sysLogger)
	recorder := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)

	// 5. Transport
	publisherService := service.NewPublisherService(constant.UpdatesTopic, pubSub)
	c.Adapter, err = telegram.NewAdapter(cfg.Telegram.BotToken, publisherService, sysLogger)
	if err != nil {
		return nil, err
	}

	// 6. Services
	taggingService := service.NewTaggingService(
		c.Sessions,
		c.Options,
		sheet,
		c.Adapter,
		state.NewManager(sysLogger),
		eventPublisher,
		recorder,
		sysLogger,
		location,
		cfg.App.KeyboardColumns,
	)
	optionsService := service.NewOptionsService(c.Options, pending, c.Adapter, eventPublisher, sysLogger)
	playlistService := service.NewPlaylistService(sheet, resolver, c.Adapter, eventPublisher, recorder, sysLogger)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		constant.UpdatesTopic,
		taggingService,
		optionsService,
		playlistService,
		recorder,
		sysLogger,
	)

	return c, nil
}

func (c *Container) newSessionRepository(cfg *config.Config) (contract.SessionRepository, error) {
	if cfg.Session.Backend != "redis" {
		return memory.NewSessionRepository(cfg.Session.IdleTimeout), nil
	}

	rdb := redisRepo.NewClient(cfg.Session.RedisURL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	c.Logger.Info("BOOTSTRAP", "Using Redis session store", nil)
	return redisRepo.NewSessionRepository(rdb, cfg.Session.IdleTimeout), nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
