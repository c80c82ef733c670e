package lendcore

import (
	"context"
	"time"
)

// UserStatus represents the admission state of a library account.
type UserStatus uint8

const (
	// StatusPending is an exported constant or variable used by the lending engine.
	StatusPending UserStatus = iota
	// StatusApproved is an exported constant or variable used by the lending engine.
	StatusApproved
	// StatusRejected is an exported constant or variable used by the lending engine.
	StatusRejected
)

// String describes the string operation and its observable behavior.
func (s UserStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusApproved:
		return "APPROVED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// UserRole represents the access role of a library account. It is an
// attribute orthogonal to [UserStatus]: changing one never constrains
// the other.
type UserRole uint8

const (
	// RoleUser is an exported constant or variable used by the lending engine.
	RoleUser UserRole = iota
	// RoleAdmin is an exported constant or variable used by the lending engine.
	RoleAdmin
)

// String describes the string operation and its observable behavior.
func (r UserRole) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}

// BorrowStatus represents the lifecycle state of a borrow record.
// Borrowed is the initial state; Returned is terminal.
type BorrowStatus uint8

const (
	// Borrowed is an exported constant or variable used by the lending engine.
	Borrowed BorrowStatus = iota
	// Returned is an exported constant or variable used by the lending engine.
	Returned
)

// String describes the string operation and its observable behavior.
func (s BorrowStatus) String() string {
	switch s {
	case Borrowed:
		return "BORROWED"
	case Returned:
		return "RETURNED"
	default:
		return "UNKNOWN"
	}
}

// UserRecord is the full account record returned by [LibraryProvider].
// The engine owns the Status and Role fields; everything else is written
// once at registration.
type UserRecord struct {
	UserID       string
	FullName     string
	Email        string
	UniversityID int64
	PasswordHash string
	Status       UserStatus
	Role         UserRole
	CreatedAt    time.Time
}

// BookRecord is the inventory view of a book title. Copies are fungible:
// only the counts are tracked, never which physical copy is out.
//
// Invariant: 0 <= AvailableCopies <= TotalCopies, and AvailableCopies
// equals TotalCopies minus the number of open borrow records for the book.
type BookRecord struct {
	BookID          string
	Title           string
	Author          string
	TotalCopies     int
	AvailableCopies int
}

// BorrowRecord is a single loan of one copy of one book to one user.
//
// ReturnDate is non-zero if and only if Status is Returned. DueDate is
// never before BorrowDate. Overdue state is derived, never stored; see
// [BorrowRecord.Overdue].
type BorrowRecord struct {
	RecordID   string
	UserID     string
	BookID     string
	Status     BorrowStatus
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate time.Time
}

// Overdue reports whether the record is an open loan past its due date at
// the given instant. Pure: recomputed on every call, never persisted.
func (r BorrowRecord) Overdue(now time.Time) bool {
	return r.Status == Borrowed && now.After(r.DueDate)
}

// CreateUserInput is passed to [LibraryProvider.CreateUser]. The password
// is already hashed; providers must enforce email and university ID
// uniqueness and surface duplicates as [ErrUserExists].
type CreateUserInput struct {
	UserID       string
	FullName     string
	Email        string
	UniversityID int64
	PasswordHash string
	Status       UserStatus
	Role         UserRole
	CreatedAt    time.Time
}

// LibraryProvider is the primary interface that callers must implement to
// integrate lendcore with their database. It covers account lookup and
// mutation, book copy accounting, and borrow-record persistence.
//
// Two methods carry atomicity requirements that the engine depends on:
//
//   - OpenBorrowRecord must decrement the book's available count through a
//     single conditional update guarded by available > 0 (never a
//     read-then-write pair) and insert the record in the same transaction,
//     returning false without any change when no copy was available at
//     commit time. A failed insert must roll the decrement back.
//   - CloseBorrowRecord must flip the record to Returned and increment the
//     book's available count (capped at total) in one transaction,
//     returning false without any change when the record was already
//     Returned.
type LibraryProvider interface {
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdateUserStatus(ctx context.Context, userID string, status UserStatus) (UserRecord, error)
	UpdateUserRole(ctx context.Context, userID string, role UserRole) (UserRecord, error)
	DeleteUser(ctx context.Context, userID string) error

	GetBook(ctx context.Context, bookID string) (BookRecord, error)

	GetBorrowRecord(ctx context.Context, recordID string) (BorrowRecord, error)
	OpenBorrowRecord(ctx context.Context, record BorrowRecord) (bool, error)
	CloseBorrowRecord(ctx context.Context, recordID string, returnDate time.Time) (bool, error)
	UpdateDueDate(ctx context.Context, recordID string, dueDate time.Time) error
	ListOpenBorrowsDueBefore(ctx context.Context, cutoff time.Time) ([]BorrowRecord, error)
}

// CacheInvalidator is notified after each successful mutation so the
// presentation layer can drop stale dashboard views. The engine's only
// contract with it is "invalidate this path".
type CacheInvalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// Reminder is handed to a [Notifier] when a due-date reminder is
// dispatched. Delivery is fire-and-forget: the engine never blocks on or
// rolls back for a notifier failure.
type Reminder struct {
	RecordID string
	UserID   string
	BookID   string
	DueDate  time.Time
	Overdue  bool
}

// Notifier delivers reminders to an external messaging collaborator.
type Notifier interface {
	Send(ctx context.Context, reminder Reminder) error
}

// ActionResult is returned by every Admin* façade method. It is safe to
// render directly: internal fault detail never reaches Message.
type ActionResult struct {
	Success bool
	Message string
}
