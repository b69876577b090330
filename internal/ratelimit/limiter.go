package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Level represents the level of rate limiting
type Level string

const (
	LevelGlobal Level = "global"
	LevelIP     Level = "ip"
	LevelAPIKey Level = "api_key"
)

// Config contains rate limit configuration
type Config struct {
	// Global limits across all clients
	Global LimitConfig `yaml:"global" envPrefix:"GLOBAL_"`

	// Limits per client IP
	PerIP LimitConfig `yaml:"per_ip" envPrefix:"PER_IP_"`

	// Limits per API key
	PerAPIKey LimitConfig `yaml:"per_api_key" envPrefix:"PER_API_KEY_"`

	// How often idle counters are dropped
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL"`
}

// Enabled returns true if any limit is configured
func (c *Config) Enabled() bool {
	return c != nil && (c.Global.active() || c.PerIP.active() || c.PerAPIKey.active())
}

// LimitConfig contains rate limit values
type LimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	RequestsPerHour   int `yaml:"requests_per_hour" json:"requests_per_hour" env:"REQUESTS_PER_HOUR"`
}

func (l LimitConfig) active() bool {
	return l.RequestsPerMinute > 0 || l.RequestsPerHour > 0
}

// Counter tracks the requests of one key in the current windows
type Counter struct {
	MinuteCount int
	HourlyCount int
	MinuteStart time.Time
	HourStart   time.Time
	LastSeen    time.Time
}

// Limiter counts API requests in fixed minute and hour windows
type Limiter struct {
	config   *Config
	counters map[string]*Counter
	mu       sync.Mutex
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLimiter creates a new rate limiter and starts its cleanup loop
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	l := &Limiter{
		config:   cfg,
		counters: make(map[string]*Counter),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Request identifies the caller of one API request
type Request struct {
	IP     string
	APIKey string
}

// Result contains the rate limit check result
type Result struct {
	Allowed    bool
	DeniedBy   Level
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds, at least 1
func (r Result) RetryAfterSeconds() int {
	s := int(math.Ceil(r.RetryAfter.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}

// Allow checks every applicable limit and counts the request when all pass
func (l *Limiter) Allow(req Request) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	checks := l.getChecks(req)

	for _, check := range checks {
		counter := l.getOrCreateCounter(check.key, now)
		resetExpiredCounters(counter, now)

		if check.limit.RequestsPerMinute > 0 && counter.MinuteCount >= check.limit.RequestsPerMinute {
			return Result{
				DeniedBy:   check.level,
				RetryAfter: counter.MinuteStart.Add(time.Minute).Sub(now),
			}
		}
		if check.limit.RequestsPerHour > 0 && counter.HourlyCount >= check.limit.RequestsPerHour {
			return Result{
				DeniedBy:   check.level,
				RetryAfter: counter.HourStart.Add(time.Hour).Sub(now),
			}
		}
	}

	for _, check := range checks {
		counter := l.counters[check.key]
		counter.MinuteCount++
		counter.HourlyCount++
		counter.LastSeen = now
	}

	return Result{Allowed: true}
}

// Len returns the number of tracked keys
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// Cleanup drops counters idle for longer than the hour window
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, counter := range l.counters {
		if now.Sub(counter.LastSeen) >= time.Hour {
			delete(l.counters, key)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup loop. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
}

type limitCheck struct {
	level Level
	key   string
	limit LimitConfig
}

func (l *Limiter) getChecks(req Request) []limitCheck {
	var checks []limitCheck

	if l.config.Global.active() {
		checks = append(checks, limitCheck{
			level: LevelGlobal,
			key:   makeKey(LevelGlobal, "global"),
			limit: l.config.Global,
		})
	}

	if req.IP != "" && l.config.PerIP.active() {
		checks = append(checks, limitCheck{
			level: LevelIP,
			key:   makeKey(LevelIP, req.IP),
			limit: l.config.PerIP,
		})
	}

	if req.APIKey != "" && l.config.PerAPIKey.active() {
		checks = append(checks, limitCheck{
			level: LevelAPIKey,
			key:   makeKey(LevelAPIKey, req.APIKey),
			limit: l.config.PerAPIKey,
		})
	}

	return checks
}

func (l *Limiter) getOrCreateCounter(key string, now time.Time) *Counter {
	counter, exists := l.counters[key]
	if !exists {
		counter = &Counter{
			MinuteStart: now,
			HourStart:   now,
			LastSeen:    now,
		}
		l.counters[key] = counter
	}
	return counter
}

func resetExpiredCounters(counter *Counter, now time.Time) {
	if now.Sub(counter.MinuteStart) >= time.Minute {
		counter.MinuteCount = 0
		counter.MinuteStart = now
	}
	if now.Sub(counter.HourStart) >= time.Hour {
		counter.HourlyCount = 0
		counter.HourStart = now
	}
}

func (l *Limiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func makeKey(level Level, key string) string {
	return string(level) + ":" + key
}
