package static

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobsonar/internal/logging"
)

// domainLimiter tracks request pacing and recent failures for one domain
type domainLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	failures int
	openedAt time.Time
}

// RateLimiter enforces a minimum interval between requests per domain
// and stops hammering domains that keep failing
type RateLimiter struct {
	interval time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	domains map[string]*domainLimiter
}

const (
	limiterMaxFailures  = 5
	limiterResetTimeout = 30 * time.Second
	limiterIdleTimeout  = 10 * time.Minute
)

// NewRateLimiter creates a per-domain rate limiter with the given
// minimum interval between requests
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &RateLimiter{
		interval: interval,
		logger:   logging.GetGlobalLogger(),
		domains:  make(map[string]*domainLimiter),
	}
}

// Wait blocks until a request to the domain is allowed, or returns an
// error when the context is cancelled or the domain is backed off
func (rl *RateLimiter) Wait(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)

	rl.mu.Lock()
	dl := rl.get(domain)
	if dl.failures >= limiterMaxFailures {
		if time.Since(dl.openedAt) < limiterResetTimeout {
			rl.mu.Unlock()
			return &BackoffError{Domain: domain}
		}
		// Allow one probe request after the reset timeout
		dl.failures = limiterMaxFailures - 1
	}
	dl.lastSeen = time.Now()
	limiter := dl.limiter
	rl.mu.Unlock()

	return limiter.Wait(ctx)
}

// RecordSuccess clears the failure count for a domain
func (rl *RateLimiter) RecordSuccess(domain string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.get(strings.ToLower(domain)).failures = 0
}

// RecordFailure counts a failed request against a domain
func (rl *RateLimiter) RecordFailure(domain string) {
	domain = strings.ToLower(domain)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	dl := rl.get(domain)
	dl.failures++
	if dl.failures == limiterMaxFailures {
		dl.openedAt = time.Now()
		rl.logger.Warn("Backing off failing domain", map[string]interface{}{
			"domain":   domain,
			"failures": dl.failures,
		})
	}
}

// Cleanup drops limiters for domains not seen recently
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-limiterIdleTimeout)
	for domain, dl := range rl.domains {
		if dl.lastSeen.Before(cutoff) {
			delete(rl.domains, domain)
		}
	}
}

// get returns the limiter for a domain, creating it on first use.
// Callers must hold rl.mu.
func (rl *RateLimiter) get(domain string) *domainLimiter {
	if dl, ok := rl.domains[domain]; ok {
		return dl
	}
	dl := &domainLimiter{
		limiter:  rate.NewLimiter(rate.Every(rl.interval), 1),
		lastSeen: time.Now(),
	}
	rl.domains[domain] = dl
	return dl
}

// BackoffError is returned when a domain is temporarily backed off
// after repeated failures
type BackoffError struct {
	Domain string
}

func (e *BackoffError) Error() string {
	return "domain backed off after repeated failures: " + e.Domain
}
