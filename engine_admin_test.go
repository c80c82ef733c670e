package lendcore

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingInvalidator captures every invalidated view path.
type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// panicProvider wraps the mock and panics on status lookups to exercise
// the façade's panic barrier.
type panicProvider struct {
	*mockLibraryProvider
}

func (panicProvider) GetUserByID(context.Context, string) (UserRecord, error) {
	panic("provider exploded")
}

func newAdminEngine(t *testing.T) (*Engine, *mockLibraryProvider, *recordingInvalidator, func()) {
	t.Helper()

	provider := newMockProvider()
	seedApprovedUser(provider, "u1")
	seedBook(provider, "b1", 2, 2)

	cache := &recordingInvalidator{}
	engine, err := New().
		WithConfig(engineTestConfig()).
		WithProvider(provider).
		WithCacheInvalidator(cache).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, provider, cache, engine.Close
}

func TestAdminSetUserStatusMessages(t *testing.T) {
	engine, provider, _, done := newAdminEngine(t)
	defer done()

	user := provider.users["u1"]
	user.Status = StatusPending
	provider.users["u1"] = user

	result := engine.AdminSetUserStatus(context.Background(), "admin-1", "u1", StatusApproved)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "User approved successfully" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	result = engine.AdminSetUserStatus(context.Background(), "admin-1", "u1", StatusRejected)
	if result.Message != "User rejected successfully" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestAdminSetUserStatusFailureIsGeneric(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	result := engine.AdminSetUserStatus(context.Background(), "admin-1", "missing", StatusApproved)
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.Message != "Failed to update user status" {
		t.Fatalf("expected generic failure message, got %q", result.Message)
	}
}

func TestAdminSetUserRoleMessage(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	result := engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleAdmin)
	if !result.Success || result.Message != "User role updated to admin successfully" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestAdminDeleteUserMessage(t *testing.T) {
	engine, provider, _, done := newAdminEngine(t)
	defer done()

	result := engine.AdminDeleteUser(context.Background(), "admin-1", "u1")
	if !result.Success || result.Message != "User deleted successfully" {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, ok := provider.users["u1"]; ok {
		t.Fatal("expected user removed")
	}
}

func TestAdminMarkReturnedMessages(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	record, err := engine.BorrowBook(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	result := engine.AdminMarkReturned(context.Background(), "admin-1", record.RecordID)
	if !result.Success || result.Message != "Book marked as returned successfully" {
		t.Fatalf("unexpected result %+v", result)
	}

	// Repeating the action is a success with a notice, not an error.
	result = engine.AdminMarkReturned(context.Background(), "admin-1", record.RecordID)
	if !result.Success || result.Message != "Book already marked as returned" {
		t.Fatalf("unexpected repeat result %+v", result)
	}
}

func TestAdminExtendDueDateMessages(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	record, err := engine.BorrowBook(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	result := engine.AdminExtendDueDate(context.Background(), "admin-1", record.RecordID, 3)
	if !result.Success || result.Message != "Due date extended by 3 days" {
		t.Fatalf("unexpected result %+v", result)
	}

	result = engine.AdminExtendDueDate(context.Background(), "admin-1", "missing", 3)
	if result.Success || result.Message != "Borrow record not found" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestAdminExtendDueDateZeroUsesDefault(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	record, err := engine.BorrowBook(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	result := engine.AdminExtendDueDate(context.Background(), "admin-1", record.RecordID, 0)
	if !result.Success || result.Message != "Due date extended by 7 days" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestAdminExtendDefaultTracksConfig(t *testing.T) {
	provider := newMockProvider()
	seedApprovedUser(provider, "u1")
	seedBook(provider, "b1", 2, 2)

	cfg := engineTestConfig()
	cfg.Loan.ExtensionDays = 10

	engine, err := New().
		WithConfig(cfg).
		WithProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	defer engine.Close()

	record, err := engine.BorrowBook(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	result := engine.AdminExtendDueDate(context.Background(), "admin-1", record.RecordID, 0)
	if !result.Success || result.Message != "Due date extended by 10 days" {
		t.Fatalf("unexpected result %+v", result)
	}

	stored := provider.records[record.RecordID]
	wantDue := record.DueDate.AddDate(0, 0, 10)
	if !stored.DueDate.Equal(wantDue) {
		t.Fatalf("stored due date %v, want %v", stored.DueDate, wantDue)
	}
}

func TestAdminSendReminderMessage(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	record, err := engine.BorrowBook(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	result := engine.AdminSendReminder(context.Background(), "admin-1", record.RecordID)
	if !result.Success || result.Message != "Reminder sent successfully" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestAdminRateLimitDeniesSixthCall(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	for i := 0; i < 5; i++ {
		result := engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleUser)
		if !result.Success {
			t.Fatalf("call %d: expected admission, got %+v", i+1, result)
		}
	}

	result := engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleUser)
	if result.Success {
		t.Fatal("expected sixth call within the window to be denied")
	}
	if result.Message != "Too many requests. Please try again later." {
		t.Fatalf("unexpected throttle message %q", result.Message)
	}
}

func TestAdminRateLimitIsPerAdmin(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	for i := 0; i < 5; i++ {
		engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleUser)
	}

	result := engine.AdminSetUserRole(context.Background(), "admin-2", "u1", RoleUser)
	if !result.Success {
		t.Fatalf("expected a different admin to have its own window, got %+v", result)
	}
}

func TestAdminRateLimitCountsMetric(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	for i := 0; i < 6; i++ {
		engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleUser)
	}

	snapshot := engine.MetricsSnapshot()
	if snapshot.Counters[MetricRateLimitHit] != 1 {
		t.Fatalf("expected 1 rate limit hit, got %d", snapshot.Counters[MetricRateLimitHit])
	}
}

func TestAdminSuccessInvalidatesViewPaths(t *testing.T) {
	engine, _, cache, done := newAdminEngine(t)
	defer done()

	engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleAdmin)

	record, err := engine.BorrowBook(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	engine.AdminMarkReturned(context.Background(), "admin-1", record.RecordID)

	paths := cache.invalidated()
	if len(paths) != 2 {
		t.Fatalf("expected 2 invalidations, got %v", paths)
	}
	if paths[0] != "/admin/users" || paths[1] != "/admin/book-requests" {
		t.Fatalf("unexpected invalidation paths %v", paths)
	}
}

func TestAdminFailureSkipsInvalidation(t *testing.T) {
	engine, _, cache, done := newAdminEngine(t)
	defer done()

	engine.AdminSetUserStatus(context.Background(), "admin-1", "missing", StatusApproved)

	if paths := cache.invalidated(); len(paths) != 0 {
		t.Fatalf("failed action must not invalidate views, got %v", paths)
	}
}

func TestAdminPanicBecomesFailureResult(t *testing.T) {
	provider := newMockProvider()
	seedApprovedUser(provider, "u1")

	engine, err := New().
		WithConfig(engineTestConfig()).
		WithProvider(panicProvider{provider}).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	defer engine.Close()

	result := engine.AdminSetUserStatus(context.Background(), "admin-1", "u1", StatusApproved)
	if result.Success {
		t.Fatal("expected panic to surface as failure result")
	}
	if result.Message != "operation failed" {
		t.Fatalf("panic detail must not leak, got %q", result.Message)
	}
}

func TestAdminRateLimitWindowElapses(t *testing.T) {
	engine, _, _, done := newAdminEngine(t)
	defer done()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	current := base
	engine.adminLimiter.SetClock(func() time.Time { return current })

	for i := 0; i < 6; i++ {
		engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleUser)
	}

	current = base.Add(61 * time.Second)
	result := engine.AdminSetUserRole(context.Background(), "admin-1", "u1", RoleUser)
	if !result.Success {
		t.Fatalf("expected admission after window elapsed, got %+v", result)
	}
}
