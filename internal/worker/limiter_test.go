package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://open.feishu.cn/hook/a"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// Token consumed for this host
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, "https://open.feishu.cn/hook/b"); err == nil {
		t.Error("expected same host to be throttled")
	}

	if err := limiter.Wait(ctx, "https://api.openai.com/v1"); err != nil {
		t.Errorf("expected other host to be allowed, got %v", err)
	}
}

func TestIntervalLimiter_Spacing(t *testing.T) {
	limiter := NewIntervalLimiter(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "webhook"); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}

	// First call is immediate, the next two wait one interval each
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Errorf("expected at least ~80ms of pacing, got %v", elapsed)
	}
}

func TestIntervalLimiter_Disabled(t *testing.T) {
	limiter := NewIntervalLimiter(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := limiter.Wait(ctx, "webhook"); err != nil {
			t.Fatalf("expected unlimited limiter to pass call %d: %v", i, err)
		}
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewIntervalLimiter(time.Hour)
	_ = limiter.Wait(context.Background(), "k")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "k"); err == nil {
		t.Error("expected wait to fail when the context deadline is shorter than the interval")
	}
}
