package apiserver

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RouteClass partitions the API surface by what the arena pays to serve
// a call. One flat per-IP limit cannot fit this surface: a healthy host
// loop legitimately posts /api/tick at frame rate, while a single
// /api/map/load re-validates the config and re-initializes every
// subsystem, so the two need limits two orders of magnitude apart.
type RouteClass string

const (
	// ClassTick is tick submission: cheap per call, legitimately arriving
	// at up to the configured tick rate from one host.
	ClassTick RouteClass = "tick"
	// ClassLoad is map loading: full validation plus subsystem
	// re-initialization per call, expected only at match start and rematch.
	ClassLoad RouteClass = "load"
	// ClassQuery is everything else: state snapshots, collision and
	// transport checks, effect reads.
	ClassQuery RouteClass = "query"
)

// ClassLimit is the steady per-IP rate and burst allowance for one
// route class.
type ClassLimit struct {
	PerSecond float64
	Burst     int
}

// RateLimitConfig holds the per-class limits applied to each client IP.
type RateLimitConfig struct {
	Tick            ClassLimit
	Load            ClassLimit
	Query           ClassLimit
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig admits a 60Hz tick loop with headroom, keeps
// map loads to rematch cadence, and leaves queries in between.
var DefaultRateLimitConfig = RateLimitConfig{
	Tick:            ClassLimit{PerSecond: 120, Burst: 240},
	Load:            ClassLimit{PerSecond: 1, Burst: 5},
	Query:           ClassLimit{PerSecond: 30, Burst: 60},
	CleanupInterval: 5 * time.Minute,
}

func (c RateLimitConfig) limitFor(class RouteClass) ClassLimit {
	switch class {
	case ClassTick:
		return c.Tick
	case ClassLoad:
		return c.Load
	default:
		return c.Query
	}
}

// clientLimits is the lazily built limiter set for one IP. Limiters are
// created per class on first use, so an IP that only ever ticks never
// pays for the other classes.
type clientLimits struct {
	byClass  map[RouteClass]*rate.Limiter
	lastSeen time.Time
}

// APILimiter enforces the per-class, per-IP request limits for the
// arena HTTP surface. Rejections are recorded both in the shared
// telemetry (arena_connection_rejected_total) and in per-class counters
// readable via Stats.
type APILimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimits
	config  RateLimitConfig

	allowed  map[RouteClass]uint64
	rejected map[RouteClass]uint64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewAPILimiter creates a limiter and starts its idle-client cleanup
// loop. Call Stop to halt the loop.
func NewAPILimiter(cfg RateLimitConfig) *APILimiter {
	l := &APILimiter{
		clients:  make(map[string]*clientLimits),
		config:   cfg,
		allowed:  make(map[RouteClass]uint64),
		rejected: make(map[RouteClass]uint64),
		stopChan: make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop halts the cleanup goroutine.
func (l *APILimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

// Allow reports whether a request from ip against the given route class
// should be admitted, and updates the per-class counters.
func (l *APILimiter) Allow(ip string, class RouteClass) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimits{byClass: make(map[RouteClass]*rate.Limiter)}
		l.clients[ip] = client
	}
	client.lastSeen = time.Now()

	limiter, ok := client.byClass[class]
	if !ok {
		lim := l.config.limitFor(class)
		limiter = rate.NewLimiter(rate.Limit(lim.PerSecond), lim.Burst)
		client.byClass[class] = limiter
	}

	if limiter.Allow() {
		l.allowed[class]++
		return true
	}
	l.rejected[class]++
	return false
}

// Limit wraps a handler with the limiter for one route class. Applied
// per route rather than router-wide so tick traffic and map loads are
// throttled independently.
func (l *APILimiter) Limit(class RouteClass, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(GetClientIP(r), class) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// Stats returns per-class allowed/rejected counts keyed by class name.
func (l *APILimiter) Stats() map[string]map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]map[string]uint64)
	for _, class := range []RouteClass{ClassTick, ClassLoad, ClassQuery} {
		out[string(class)] = map[string]uint64{
			"allowed":  l.allowed[class],
			"rejected": l.rejected[class],
		}
	}
	return out
}

func (l *APILimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.dropIdle()
		}
	}
}

func (l *APILimiter) dropIdle() {
	cutoff := time.Now().Add(-l.config.CleanupInterval * 2)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// WSConnLimiter caps concurrent event-stream subscribers per IP so a
// single client cannot monopolize the hub's broadcast fan-out slots.
type WSConnLimiter struct {
	mu       sync.Mutex
	open     map[string]int
	maxPerIP int
	rejected uint64
}

// NewWSConnLimiter creates a WebSocket connection limiter.
func NewWSConnLimiter(maxPerIP int) *WSConnLimiter {
	return &WSConnLimiter{open: make(map[string]int), maxPerIP: maxPerIP}
}

// Acquire claims a connection slot for ip, reporting whether one was
// available.
func (l *WSConnLimiter) Acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open[ip] >= l.maxPerIP {
		l.rejected++
		return false
	}
	l.open[ip]++
	return true
}

// Release frees a connection slot for ip.
func (l *WSConnLimiter) Release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open[ip] > 0 {
		l.open[ip]--
	}
	if l.open[ip] == 0 {
		delete(l.open, ip)
	}
}

// OpenCount returns the current connection count for ip.
func (l *WSConnLimiter) OpenCount(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open[ip]
}

// Rejected returns how many connection attempts the cap has refused.
func (l *WSConnLimiter) Rejected() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rejected
}

// GetClientIP extracts the client IP from an HTTP request, honoring
// X-Forwarded-For/X-Real-IP for proxied deployments.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
