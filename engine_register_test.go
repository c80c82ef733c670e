package lendcore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newRegisterEngine(t *testing.T, cfg Config) (*Engine, *mockLibraryProvider, func()) {
	t.Helper()

	provider := newMockProvider()
	engine, done := newTestEngine(t, cfg, provider)
	return engine, provider, done
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FullName:     "Bob Borrower",
		Email:        "bob@university.edu",
		UniversityID: 54321,
		Password:     "correct-horse-battery",
	}
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	engine, provider, done := newRegisterEngine(t, engineTestConfig())
	defer done()

	created, err := engine.RegisterUser(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if created.Status != StatusPending {
		t.Fatalf("new accounts must start PENDING, got %v", created.Status)
	}
	if created.Role != RoleUser {
		t.Fatalf("expected default role USER, got %v", created.Role)
	}
	if created.UserID == "" {
		t.Fatal("expected user ID assigned")
	}

	stored := provider.user(t, created.UserID)
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id PHC hash, got %q", stored.PasswordHash)
	}
	if stored.PasswordHash == "correct-horse-battery" {
		t.Fatal("password must never be stored in the clear")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	engine, _, done := newRegisterEngine(t, engineTestConfig())
	defer done()

	if _, err := engine.RegisterUser(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	req := validRegistration()
	req.UniversityID = 99999
	_, err := engine.RegisterUser(context.Background(), req)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	engine, provider, done := newRegisterEngine(t, engineTestConfig())
	defer done()

	req := validRegistration()
	req.Email = ""

	_, err := engine.RegisterUser(context.Background(), req)
	if !errors.Is(err, ErrRegistrationInvalid) {
		t.Fatalf("expected ErrRegistrationInvalid, got %v", err)
	}
	if provider.createUserCalls != 0 {
		t.Fatalf("invalid request must not reach the store, got %d calls", provider.createUserCalls)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	engine, _, done := newRegisterEngine(t, engineTestConfig())
	defer done()

	req := validRegistration()
	req.Password = "short"

	_, err := engine.RegisterUser(context.Background(), req)
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterDisabled(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Registration.Enabled = false

	engine, _, done := newRegisterEngine(t, cfg)
	defer done()

	_, err := engine.RegisterUser(context.Background(), validRegistration())
	if !errors.Is(err, ErrRegistrationDisabled) {
		t.Fatalf("expected ErrRegistrationDisabled, got %v", err)
	}
}

func TestRegisterEmailThrottle(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Registration.MaxAttempts = 2
	cfg.Registration.EnableIPThrottle = false

	engine, _, done := newRegisterEngine(t, cfg)
	defer done()

	req := validRegistration()
	req.Password = "short" // keep every attempt failing before the store

	for i := 0; i < 2; i++ {
		if _, err := engine.RegisterUser(context.Background(), req); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("attempt %d: expected ErrWeakPassword, got %v", i+1, err)
		}
	}

	_, err := engine.RegisterUser(context.Background(), req)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on third attempt, got %v", err)
	}
}

func TestRegisterIPThrottle(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Registration.MaxAttempts = 2
	cfg.Registration.EnableIdentifierThrottle = false

	engine, _, done := newRegisterEngine(t, cfg)
	defer done()

	ctx := WithClientIP(context.Background(), "203.0.113.9")

	for i := 0; i < 2; i++ {
		req := validRegistration()
		req.Email = "short@university.edu"
		req.Password = "short"
		if _, err := engine.RegisterUser(ctx, req); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("attempt %d: expected ErrWeakPassword, got %v", i+1, err)
		}
	}

	req := validRegistration()
	req.Email = "different@university.edu"
	_, err := engine.RegisterUser(ctx, req)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for same IP with fresh email, got %v", err)
	}
}

func TestRegisterThrottleIsPerIdentifier(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Registration.MaxAttempts = 1
	cfg.Registration.EnableIPThrottle = false

	engine, _, done := newRegisterEngine(t, cfg)
	defer done()

	first := validRegistration()
	if _, err := engine.RegisterUser(context.Background(), first); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	second := validRegistration()
	second.Email = "carol@university.edu"
	second.UniversityID = 11111
	if _, err := engine.RegisterUser(context.Background(), second); err != nil {
		t.Fatalf("different email must have its own window, got %v", err)
	}
}

func TestRegisterMetrics(t *testing.T) {
	engine, _, done := newRegisterEngine(t, engineTestConfig())
	defer done()

	if _, err := engine.RegisterUser(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	dup := validRegistration()
	dup.UniversityID = 22222
	if _, err := engine.RegisterUser(context.Background(), dup); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	snapshot := engine.MetricsSnapshot()
	if snapshot.Counters[MetricRegistrationSuccess] != 1 {
		t.Fatalf("expected 1 successful registration, got %d", snapshot.Counters[MetricRegistrationSuccess])
	}
	if snapshot.Counters[MetricRegistrationDuplicate] != 1 {
		t.Fatalf("expected 1 duplicate registration, got %d", snapshot.Counters[MetricRegistrationDuplicate])
	}
}
