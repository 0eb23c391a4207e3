package service

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PredictRateLimiter limita la frecuencia de predicciones por clave (usuario o IP).
type PredictRateLimiter interface {
	Allow(key string) bool
}

const maxTrackedLimiterKeys = 10000

// limiterKey normaliza la clave; una clave vacia nunca pasa.
func limiterKey(key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	return key, key != ""
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	window  time.Duration
	entries map[string]*limiterEntry
	now     func() time.Time
}

// NewMemoryRateLimiter crea un token bucket por clave que repone max tokens por ventana.
func NewMemoryRateLimiter(window time.Duration, max int) PredictRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryRateLimiter{
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		window:  window,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *memoryRateLimiter) Allow(key string) bool {
	normalizedKey, ok := limiterKey(key)
	if !ok {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[normalizedKey]
	if !ok {
		if len(l.entries) >= maxTrackedLimiterKeys {
			l.evictIdle(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[normalizedKey] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evictIdle descarta las claves sin uso durante una ventana completa; su bucket ya esta lleno.
func (l *memoryRateLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-l.window)
	for k, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}
