package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func newSlidingWindowLimiter(client redisEvaler, window time.Duration, max int) *slidingWindowLimiter {
	return &slidingWindowLimiter{
		client:    client,
		window:    window,
		max:       max,
		keyPrefix: "quantumshop:predict:",
		now:       func() time.Time { return time.UnixMilli(1_700_000_000_000) },
		newMember: func() string { return "req-1" },
		logger:    zap.NewNop(),
	}
}

func TestSlidingWindowLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *slidingWindowLimiter
		if !l.Allow("user-1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected without calling redis", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 1}
		l := newSlidingWindowLimiter(mock, time.Minute, 3)
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
		if mock.lastScript != "" {
			t.Fatalf("redis should not be called for an empty key")
		}
	})

	t.Run("script arguments", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 1}
		l := newSlidingWindowLimiter(mock, 2*time.Minute, 3)
		if !l.Allow(" User-1 ") {
			t.Fatalf("expected allow when script returns 1")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "quantumshop:predict:user-1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		want := []interface{}{int64(1_700_000_000_000), int64(120_000), 3, "req-1"}
		if len(mock.lastArgs) != len(want) {
			t.Fatalf("args = %+v, want %+v", mock.lastArgs, want)
		}
		for i := range want {
			if mock.lastArgs[i] != want[i] {
				t.Fatalf("arg %d = %#v, want %#v", i, mock.lastArgs[i], want[i])
			}
		}
		if mock.lastScript != slidingWindowScript {
			t.Fatalf("expected sliding window script")
		}
	})

	t.Run("deny when window is full", func(t *testing.T) {
		l := newSlidingWindowLimiter(&mockRedisEvaler{result: 0}, time.Minute, 3)
		if l.Allow("user-1") {
			t.Fatalf("expected deny when script returns 0")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newSlidingWindowLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow("user-1") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestNewRedisRateLimiterWithoutClient(t *testing.T) {
	if l := NewRedisRateLimiter(nil, time.Minute, 5, nil); l != nil {
		t.Fatalf("expected nil limiter without a redis client")
	}
}

func TestMemoryRateLimiterAllow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	l.now = func() time.Time { return now }

	if !l.Allow("user-1") || !l.Allow("USER-1") {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow("user-1") {
		t.Fatalf("expected third request in the same instant to be limited")
	}
	if !l.Allow("user-2") {
		t.Fatalf("expected independent bucket per key")
	}

	now = now.Add(30 * time.Second)
	if !l.Allow("user-1") {
		t.Fatalf("expected one token refilled after half a window")
	}
	if l.Allow("") {
		t.Fatalf("expected empty key to be rejected")
	}
}

func TestMemoryRateLimiterEvictsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(time.Minute, 1).(*memoryRateLimiter)
	l.now = func() time.Time { return now }
	l.Allow("stale")

	now = now.Add(2 * time.Minute)
	l.evictIdle(now)
	if _, ok := l.entries["stale"]; ok {
		t.Fatalf("expected idle key to be evicted")
	}
}
