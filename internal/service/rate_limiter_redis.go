package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ventana deslizante: un sorted set por clave con el instante (ms) de cada solicitud aceptada.
// ARGV: ahora_ms, ventana_ms, maximo, miembro unico.
const slidingWindowScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1] - ARGV[2])
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 1
`

const redisLimiterTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// slidingWindowLimiter comparte el conteo de predicciones entre instancias de la api.
type slidingWindowLimiter struct {
	client    redisEvaler
	window    time.Duration
	max       int
	keyPrefix string
	now       func() time.Time
	newMember func() string
	logger    *zap.Logger
}

// NewRedisRateLimiter devuelve nil si no hay cliente; el llamador cae al limitador en memoria.
// Si redis falla la solicitud pasa igual.
func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int, logger *zap.Logger) PredictRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &slidingWindowLimiter{
		client:    client,
		window:    window,
		max:       max,
		keyPrefix: "quantumshop:predict:",
		now:       time.Now,
		newMember: uuid.NewString,
		logger:    logger,
	}
}

func (l *slidingWindowLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key, ok := limiterKey(key)
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()

	allowed, err := l.client.Eval(ctx, slidingWindowScript, []string{l.keyPrefix + key},
		l.now().UnixMilli(),
		l.window.Milliseconds(),
		l.max,
		l.newMember(),
	).Int()
	if err != nil {
		l.logger.Warn("redis rate limiter unavailable, allowing request", zap.Error(err), zap.String("key", key))
		return true
	}
	return allowed == 1
}
