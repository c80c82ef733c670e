package rate

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	quiet := log.New(io.Discard, "", 0)
	return New(client, NewMemoryWindow(), cfg, quiet), mr
}

func TestAdmitWithinQuota(t *testing.T) {
	limiter, _ := newRedisLimiter(t, Config{Window: time.Minute, Quota: 5, Prefix: "t"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision := limiter.Admit(ctx, "admin-1")
		if !decision.Allowed {
			t.Fatalf("call %d: expected admission", i+1)
		}
		if want := 5 - (i + 1); decision.Remaining != want {
			t.Fatalf("call %d: expected remaining %d, got %d", i+1, want, decision.Remaining)
		}
		if decision.Fallback {
			t.Fatalf("call %d: shared decision must not be flagged fallback", i+1)
		}
	}
}

func TestSixthAdmitDenied(t *testing.T) {
	limiter, _ := newRedisLimiter(t, Config{Window: time.Minute, Quota: 5, Prefix: "t"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		limiter.Admit(ctx, "admin-1")
	}

	decision := limiter.Admit(ctx, "admin-1")
	if decision.Allowed {
		t.Fatal("expected sixth admission within the window to be denied")
	}
	if decision.Remaining != 0 {
		t.Fatalf("expected remaining 0 on denial, got %d", decision.Remaining)
	}
	if decision.ResetAt.IsZero() {
		t.Fatal("expected denial to carry a reset time")
	}
}

func TestWindowElapseResumesAdmission(t *testing.T) {
	limiter, mr := newRedisLimiter(t, Config{Window: time.Minute, Quota: 2, Prefix: "t"})
	ctx := context.Background()

	limiter.Admit(ctx, "admin-1")
	limiter.Admit(ctx, "admin-1")
	if limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected denial at quota")
	}

	mr.FastForward(61 * time.Second)

	if !limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected admission after window expiry")
	}
}

func TestIdentifiersHaveIndependentWindows(t *testing.T) {
	limiter, _ := newRedisLimiter(t, Config{Window: time.Minute, Quota: 1, Prefix: "t"})
	ctx := context.Background()

	if !limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected first identifier admitted")
	}
	if !limiter.Admit(ctx, "admin-2").Allowed {
		t.Fatal("expected second identifier to have its own window")
	}
	if limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected first identifier at quota")
	}
}

func TestFallbackWhenRedisUnavailable(t *testing.T) {
	limiter, mr := newRedisLimiter(t, Config{Window: time.Minute, Quota: 2, Prefix: "t"})
	ctx := context.Background()

	mr.Close()

	// The limiter keeps answering and keeps enforcing the quota locally.
	for i := 0; i < 2; i++ {
		decision := limiter.Admit(ctx, "admin-1")
		if !decision.Allowed {
			t.Fatalf("fallback call %d: expected admission", i+1)
		}
		if !decision.Fallback {
			t.Fatalf("fallback call %d: expected fallback flag", i+1)
		}
	}
	if limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected fallback to enforce quota")
	}
}

func TestNilRedisUsesFallbackOnly(t *testing.T) {
	limiter := New(nil, NewMemoryWindow(), Config{Window: time.Minute, Quota: 1, Prefix: "t"}, nil)
	ctx := context.Background()

	if !limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected admission from local window")
	}
	if limiter.Admit(ctx, "admin-1").Allowed {
		t.Fatal("expected local window to enforce quota")
	}
}

func TestAdmitSurvivesCancelledContext(t *testing.T) {
	limiter, _ := newRedisLimiter(t, Config{Window: time.Minute, Quota: 5, Prefix: "t"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A dead context degrades to the fallback; it must never panic.
	decision := limiter.Admit(ctx, "admin-1")
	if !decision.Allowed {
		t.Fatal("expected fallback admission under cancelled context")
	}
}
