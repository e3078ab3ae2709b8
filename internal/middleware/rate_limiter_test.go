package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiterBurstThenRefusal(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 2, time.Hour)

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("first request within burst should pass")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("second request within burst should pass")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("request beyond burst should be refused")
	}

	// Keys are independent.
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("a different key must have its own budget")
	}
}

func TestIPRateLimiterExpiresIdleVisitors(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base

	l := NewIPRateLimiter(1, time.Hour, 1, time.Minute).(*ipRateLimiter)
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}

	now = base.Add(2 * time.Minute)
	l.Allow("5.6.7.8")

	l.mu.Lock()
	_, stillTracked := l.visitors["1.2.3.4"]
	l.mu.Unlock()

	if stillTracked {
		t.Fatal("idle visitor should have been expired")
	}
}
