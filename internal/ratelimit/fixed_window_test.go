package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterEnforcesQuota(t *testing.T) {
	r := miniredis.RunT(t)
	l, err := NewRedisFixedWindowLimiter(r.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !l.Allow("1.2.3.4") {
		t.Fatalf("first request should pass")
	}
	if !l.Allow("1.2.3.4") {
		t.Fatalf("second request should pass")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other keys keep their own quota")
	}
}

func TestFixedWindowLimiterFailsClosedOnRedisLoss(t *testing.T) {
	r := miniredis.RunT(t)
	l, err := NewRedisFixedWindowLimiter(r.Addr(), "", "", 5, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	r.Close()
	if l.Allow("1.2.3.4") {
		t.Fatalf("expected fail-closed when redis is unreachable")
	}
}

func TestFixedWindowLimiterNilAllowsAll(t *testing.T) {
	var l *FixedWindowLimiter
	if !l.Allow("1.2.3.4") {
		t.Fatalf("nil limiter means limiting disabled")
	}
}

func TestNewRedisFixedWindowLimiterValidation(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter("localhost:6379", "", "", 0, time.Minute); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := NewRedisFixedWindowLimiter("", "", "", 1, time.Minute); err == nil {
		t.Fatalf("expected error for missing addr")
	}
}
