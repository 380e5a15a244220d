package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	limiter := NewLimiter(1, 5)

	for i := 0; i < 5; i++ {
		if !limiter.Allow() {
			t.Errorf("Request %d within burst should be allowed", i)
		}
	}
}

func TestDenyBeyondBurst(t *testing.T) {
	limiter := NewLimiter(1, 3)

	for i := 0; i < 3; i++ {
		limiter.Allow()
	}
	if limiter.Allow() {
		t.Error("Request beyond burst should be denied")
	}
}

func TestTokensRefill(t *testing.T) {
	limiter := NewLimiter(100, 1)

	if !limiter.Allow() {
		t.Fatal("First request should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("Bucket should be empty")
	}

	time.Sleep(20 * time.Millisecond)

	if !limiter.Allow() {
		t.Error("Expected a token after refill interval")
	}
}

func TestTokensCappedAtBurst(t *testing.T) {
	limiter := NewLimiter(1000, 2)

	time.Sleep(20 * time.Millisecond)

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow() {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("Expected exactly burst (2) tokens after idle, got %d", allowed)
	}
}
