package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pet-adoption-economy/internal/platform/logger"

	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PerMinute:       120,
		Burst:           120,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter limita requests por usuario autenticado, o por IP si no hay claims.
// Debe ir después de AuthContext (y de chi RealIP).
type RateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	log   logger.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg RateLimiterConfig, log logger.Logger) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = def.PerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.PerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if log == nil {
		log = logger.Nop()
	}

	rl := &RateLimiter{
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:    cfg.Burst,
		ttl:      cfg.CleanupInterval * 2,
		log:      log,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop(cfg.CleanupInterval)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.limiterFor(key).Allow() {
			rl.log.Warn("rate limit exceeded", map[string]any{
				"client": key,
				"path":   r.URL.Path,
			})
			retryAfter := max(1, int(math.Ceil(1.0/float64(rl.limit))))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Count es la cantidad de clientes con limiter vivo.
func (rl *RateLimiter) Count() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > rl.ttl {
			delete(rl.limiters, key)
		}
	}
}

func clientKey(r *http.Request) string {
	if c, ok := GetClaims(r.Context()); ok && c.UserID > 0 {
		return "user:" + strconv.FormatInt(c.UserID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
