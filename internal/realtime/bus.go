package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bus propaga mensajes entre instancias de la API.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	StartForwarder(ctx context.Context, onMsg func(Message)) error
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisBus publica en un unico canal de redis y reenvia lo recibido al hub local.
type RedisBus struct {
	logger  *zap.Logger
	pub     redisPublisher
	rdb     *redis.Client
	channel string
}

func NewRedisBus(rdb *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = "analysis-events"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{
		logger:  logger.With(zap.String("component", "redis_bus")),
		pub:     rdb,
		rdb:     rdb,
		channel: channel,
	}
}

func (b *RedisBus) Publish(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode bus message: %w", err)
	}
	if err := b.pub.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// StartForwarder se suscribe y devuelve cuando la suscripcion quedo confirmada.
// La entrega sigue en background hasta que ctx se cancela.
func (b *RedisBus) StartForwarder(ctx context.Context, onMsg func(Message)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				b.forward(m.Payload, onMsg)
			}
		}
	}()
	return nil
}

func (b *RedisBus) forward(payload string, onMsg func(Message)) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.Warn("bad redis bus payload", zap.Error(err))
		return
	}
	if msg.Channel == "" {
		return
	}
	onMsg(msg)
}
