package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/config"
	"github.com/Abin-1409/fuel-swift/internal/events"
	"github.com/Abin-1409/fuel-swift/internal/payment"
	"github.com/Abin-1409/fuel-swift/internal/telegram"
)

// Infra holds the process-wide connections. Broker and Notifier are nil when
// not configured.
type Infra struct {
	PG       *pgxpool.Pool
	Redis    *redis.Client
	Broker   *events.AMQPPublisher
	Notifier *telegram.Notifier
	Gateway  payment.Gateway
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Infra, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	deps := &Infra{PG: pool}

	deps.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := deps.Redis.Ping(ctx).Err(); err != nil {
		deps.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if cfg.AMQPURL != "" {
		deps.Broker, err = events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			deps.Close()
			return nil, err
		}
		logger.Info("amqp publisher ready", zap.String("exchange", cfg.AMQPExchange))
	}

	// a broken bot token should not keep the API down
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChatID != 0 {
		deps.Notifier, err = telegram.New(cfg.TelegramBotToken, cfg.TelegramAdminChatID, logger)
		if err != nil {
			logger.Warn("telegram notifier disabled", zap.Error(err))
		}
	}

	if cfg.RazorpayKeyID != "" {
		deps.Gateway = payment.NewRazorpayClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		logger.Warn("razorpay credentials not set, using offline payment gateway")
		deps.Gateway = payment.NewOffline()
	}

	logger.Info("infra ready")
	return deps, nil
}

// Publisher fans events out to the websocket hub plus the optional broker and notifier.
func (i *Infra) Publisher(hub *events.Hub) events.Publisher {
	m := events.Multi{hub}
	if i.Broker != nil {
		m = append(m, i.Broker)
	}
	if i.Notifier != nil {
		m = append(m, i.Notifier)
	}
	return m
}

func (i *Infra) Close() {
	if i == nil {
		return
	}
	if i.Broker != nil {
		_ = i.Broker.Close()
	}
	if i.PG != nil {
		i.PG.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
}
