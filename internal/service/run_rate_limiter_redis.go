package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunRateLimiter limita cuantas corridas puede disparar un cliente por ventana.
// Cada corrida cuesta cientos de llamadas al modelo.
type RunRateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

const redisRunAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

// redisRunRateLimiter usa ventanas fijas alineadas: la clave lleva el inicio de
// la ventana, asi un cliente no extiende su bloqueo reintentando.
type redisRunRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisRunRateLimiter(client *redis.Client, window time.Duration, max int) RunRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &redisRunRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "runs:rl:",
		now:    time.Now,
	}
}

// Allow falla abierto ante errores de Redis.
func (l *redisRunRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}
	windowStart := now().Unix() / int64(seconds) * int64(seconds)
	redisKey := l.prefix + normalizedKey + ":" + strconv.FormatInt(windowStart, 10)
	count, err := l.client.Eval(ctx, redisRunAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
