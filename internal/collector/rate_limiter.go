package collector

import (
	"sync"
	"time"

	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
)

// RateLimiter tracks the GitHub API quota reported by responses.
// It never waits: once the quota is exhausted calls fail until the reset time.
type RateLimiter interface {
	Check() error
	CheckLimit() (remaining int, resetTime time.Time)
	UpdateLimit(remaining int, resetTime time.Time)
}

// githubRateLimiter implements RateLimiter for GitHub API
type githubRateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(now func() time.Time) RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &githubRateLimiter{
		remaining: -1, // unknown until the first response
		now:       now,
	}
}

// Check returns a rate limited error while the quota is exhausted
func (r *githubRateLimiter) Check() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remaining == 0 && r.now().Before(r.resetTime) {
		return apperrors.NewRateLimitedError(nil)
	}
	return nil
}

// CheckLimit returns the current rate limit status
func (r *githubRateLimiter) CheckLimit() (remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetTime
}

// UpdateLimit updates the rate limit from API response headers
func (r *githubRateLimiter) UpdateLimit(remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.resetTime = resetTime
}
