package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS FORWARDER
// Mirrors every gradebook event to a Redis pub/sub channel as JSON so other
// tools can follow the session. Forwarding is one-way; nothing is read back.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultForwardChannel is the channel used when none is configured.
const DefaultForwardChannel = "gradebook:events"

// RedisForwarderConfig contains configuration for RedisForwarder.
type RedisForwarderConfig struct {
	// URL is a redis:// connection URL.
	URL string

	// Channel receives the events. Defaults to DefaultForwardChannel.
	Channel string

	// Timeout bounds each publish. Defaults to 2s.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// RedisForwarder publishes events to Redis.
type RedisForwarder struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	logger  *slog.Logger
}

// EventEnvelope is the wire format of a forwarded event.
type EventEnvelope struct {
	Type        shared.EventType       `json:"type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

// ErrForwarderConfig is returned for an unusable forwarder configuration.
var ErrForwarderConfig = errors.New("redis forwarder: invalid configuration")

// NewRedisForwarder creates a forwarder. It does not connect until the
// first Ping or publish.
func NewRedisForwarder(cfg RedisForwarderConfig) (*RedisForwarder, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrForwarderConfig)
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForwarderConfig, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	opts.DialTimeout = cfg.Timeout
	opts.ReadTimeout = cfg.Timeout
	opts.WriteTimeout = cfg.Timeout
	opts.MaxRetries = 1

	if cfg.Channel == "" {
		cfg.Channel = DefaultForwardChannel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RedisForwarder{
		client:  redis.NewClient(opts),
		channel: cfg.Channel,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With("component", "redis_forwarder"),
	}, nil
}

// Channel returns the channel events are published to.
func (f *RedisForwarder) Channel() string {
	return f.channel
}

// Ping checks the connection.
func (f *RedisForwarder) Ping(ctx context.Context) error {
	if err := f.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis forwarder: ping: %w", err)
	}
	return nil
}

// Register subscribes the forwarder to every event on the bus.
func (f *RedisForwarder) Register(subscriber shared.EventSubscriber) error {
	return subscriber.SubscribeAll(f.Handle)
}

// Handle publishes one event. It implements shared.EventHandler.
func (f *RedisForwarder) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	_, err := f.Forward(ctx, event)
	return err
}

// Forward publishes event and returns the number of subscribers that
// received it.
func (f *RedisForwarder) Forward(ctx context.Context, event shared.Event) (int64, error) {
	payload, err := EncodeEvent(event)
	if err != nil {
		return 0, err
	}

	receivers, err := f.client.Publish(ctx, f.channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis forwarder: publish %s: %w", event.EventType(), err)
	}

	f.logger.Debug("event forwarded",
		"event_type", event.EventType(),
		"channel", f.channel,
		"receivers", receivers,
	)
	return receivers, nil
}

// Close closes the Redis client.
func (f *RedisForwarder) Close() error {
	return f.client.Close()
}

// EncodeEvent converts an event into its JSON envelope.
func EncodeEvent(event shared.Event) ([]byte, error) {
	if event == nil {
		return nil, errors.New("event cannot be nil")
	}

	data, err := json.Marshal(EventEnvelope{
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt().UTC(),
		Payload:     event.Payload(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event.EventType(), err)
	}
	return data, nil
}
