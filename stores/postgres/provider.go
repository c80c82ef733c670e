package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuslib/lendcore"
)

const uniqueViolation = "23505"

// Provider implements [lendcore.LibraryProvider] over a pgx connection
// pool. The pool is owned by the caller.
type Provider struct {
	pool *pgxpool.Pool
}

// New creates a Provider over an existing pool.
func New(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// Connect builds a tuned pgx pool from a connection string.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = 30
	cfg.MinConns = 5
	cfg.HealthCheckPeriod = time.Minute
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// GetUserByID describes the getuserbyid operation and its observable behavior.
func (p *Provider) GetUserByID(ctx context.Context, userID string) (lendcore.UserRecord, error) {
	return p.scanUser(p.pool.QueryRow(ctx, `
		SELECT id, full_name, email, university_id, password_hash, status, role, created_at
		FROM users WHERE id = $1`, userID))
}

// GetUserByEmail describes the getuserbyemail operation and its observable behavior.
func (p *Provider) GetUserByEmail(ctx context.Context, email string) (lendcore.UserRecord, error) {
	return p.scanUser(p.pool.QueryRow(ctx, `
		SELECT id, full_name, email, university_id, password_hash, status, role, created_at
		FROM users WHERE email = $1`, email))
}

// CreateUser describes the createuser operation and its observable behavior.
//
// Duplicate email or university ID surfaces as [lendcore.ErrUserExists].
func (p *Provider) CreateUser(ctx context.Context, input lendcore.CreateUserInput) (lendcore.UserRecord, error) {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, university_id, password_hash, status, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		input.UserID, input.FullName, input.Email, input.UniversityID,
		input.PasswordHash, input.Status.String(), input.Role.String(), input.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return lendcore.UserRecord{}, lendcore.ErrUserExists
		}
		return lendcore.UserRecord{}, fmt.Errorf("creating user: %w", err)
	}

	return lendcore.UserRecord{
		UserID:       input.UserID,
		FullName:     input.FullName,
		Email:        input.Email,
		UniversityID: input.UniversityID,
		PasswordHash: input.PasswordHash,
		Status:       input.Status,
		Role:         input.Role,
		CreatedAt:    input.CreatedAt,
	}, nil
}

// UpdateUserStatus describes the updateuserstatus operation and its observable behavior.
func (p *Provider) UpdateUserStatus(ctx context.Context, userID string, status lendcore.UserStatus) (lendcore.UserRecord, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET status = $2 WHERE id = $1`, userID, status.String())
	if err != nil {
		return lendcore.UserRecord{}, fmt.Errorf("updating user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lendcore.UserRecord{}, lendcore.ErrUserNotFound
	}
	return p.GetUserByID(ctx, userID)
}

// UpdateUserRole describes the updateuserrole operation and its observable behavior.
func (p *Provider) UpdateUserRole(ctx context.Context, userID string, role lendcore.UserRole) (lendcore.UserRecord, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET role = $2 WHERE id = $1`, userID, role.String())
	if err != nil {
		return lendcore.UserRecord{}, fmt.Errorf("updating user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lendcore.UserRecord{}, lendcore.ErrUserNotFound
	}
	return p.GetUserByID(ctx, userID)
}

// DeleteUser describes the deleteuser operation and its observable behavior.
//
// Borrow records referencing the user are left in place (orphaned).
func (p *Provider) DeleteUser(ctx context.Context, userID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lendcore.ErrUserNotFound
	}
	return nil
}

// GetBook describes the getbook operation and its observable behavior.
func (p *Provider) GetBook(ctx context.Context, bookID string) (lendcore.BookRecord, error) {
	var book lendcore.BookRecord
	err := p.pool.QueryRow(ctx, `
		SELECT id, title, author, total_copies, available_copies
		FROM books WHERE id = $1`, bookID).
		Scan(&book.BookID, &book.Title, &book.Author, &book.TotalCopies, &book.AvailableCopies)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lendcore.BookRecord{}, lendcore.ErrBookNotFound
		}
		return lendcore.BookRecord{}, fmt.Errorf("fetching book: %w", err)
	}
	return book, nil
}

// OpenBorrowRecord takes one copy off the shelf and inserts the record in
// one transaction. The availability check and the decrement are one
// conditional statement so concurrent borrows cannot drive the count
// negative; false (with no change) means no copy was available at commit
// time. A failed insert rolls the decrement back.
func (p *Provider) OpenBorrowRecord(ctx context.Context, record lendcore.BorrowRecord) (bool, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning open transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE books SET available_copies = available_copies - 1
		WHERE id = $1 AND available_copies > 0`, record.BookID)
	if err != nil {
		return false, fmt.Errorf("decrementing available copies: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO borrow_records (id, user_id, book_id, status, borrow_date, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.RecordID, record.UserID, record.BookID,
		record.Status.String(), record.BorrowDate, record.DueDate,
	)
	if err != nil {
		return false, fmt.Errorf("creating borrow record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing open transaction: %w", err)
	}
	return true, nil
}

// GetBorrowRecord describes the getborrowrecord operation and its observable behavior.
func (p *Provider) GetBorrowRecord(ctx context.Context, recordID string) (lendcore.BorrowRecord, error) {
	var (
		record     lendcore.BorrowRecord
		status     string
		returnDate *time.Time
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, user_id, book_id, status, borrow_date, due_date, return_date
		FROM borrow_records WHERE id = $1`, recordID).
		Scan(&record.RecordID, &record.UserID, &record.BookID, &status,
			&record.BorrowDate, &record.DueDate, &returnDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lendcore.BorrowRecord{}, lendcore.ErrRecordNotFound
		}
		return lendcore.BorrowRecord{}, fmt.Errorf("fetching borrow record: %w", err)
	}

	record.Status = parseBorrowStatus(status)
	if returnDate != nil {
		record.ReturnDate = *returnDate
	}
	return record, nil
}

// CloseBorrowRecord flips the record to RETURNED and credits the copy
// back in one transaction; a crash between the two statements cannot
// understate availability. False (with no change) means another caller
// already closed the record.
func (p *Provider) CloseBorrowRecord(ctx context.Context, recordID string, returnDate time.Time) (bool, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning close transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var bookID string
	err = tx.QueryRow(ctx, `
		UPDATE borrow_records SET status = 'RETURNED', return_date = $2
		WHERE id = $1 AND status = 'BORROWED'
		RETURNING book_id`, recordID, returnDate).Scan(&bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Already returned; nothing to credit.
			return false, nil
		}
		return false, fmt.Errorf("closing borrow record: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE books SET available_copies = LEAST(available_copies + 1, total_copies)
		WHERE id = $1`, bookID)
	if err != nil {
		return false, fmt.Errorf("crediting available copies: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing close transaction: %w", err)
	}
	return true, nil
}

// UpdateDueDate describes the updateduedate operation and its observable behavior.
func (p *Provider) UpdateDueDate(ctx context.Context, recordID string, dueDate time.Time) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE borrow_records SET due_date = $2 WHERE id = $1`, recordID, dueDate)
	if err != nil {
		return fmt.Errorf("updating due date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lendcore.ErrRecordNotFound
	}
	return nil
}

// ListOpenBorrowsDueBefore describes the listopenborrowsduebefore operation and its observable behavior.
func (p *Provider) ListOpenBorrowsDueBefore(ctx context.Context, cutoff time.Time) ([]lendcore.BorrowRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, book_id, status, borrow_date, due_date, return_date
		FROM borrow_records
		WHERE status = 'BORROWED' AND due_date < $1
		ORDER BY due_date`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("listing open borrows: %w", err)
	}
	defer rows.Close()

	var records []lendcore.BorrowRecord
	for rows.Next() {
		var (
			record     lendcore.BorrowRecord
			status     string
			returnDate *time.Time
		)
		if err := rows.Scan(&record.RecordID, &record.UserID, &record.BookID, &status,
			&record.BorrowDate, &record.DueDate, &returnDate); err != nil {
			return nil, fmt.Errorf("scanning borrow record: %w", err)
		}
		record.Status = parseBorrowStatus(status)
		if returnDate != nil {
			record.ReturnDate = *returnDate
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating borrow records: %w", err)
	}

	return records, nil
}

func (p *Provider) scanUser(row pgx.Row) (lendcore.UserRecord, error) {
	var (
		user   lendcore.UserRecord
		status string
		role   string
	)
	err := row.Scan(&user.UserID, &user.FullName, &user.Email, &user.UniversityID,
		&user.PasswordHash, &status, &role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lendcore.UserRecord{}, lendcore.ErrUserNotFound
		}
		return lendcore.UserRecord{}, fmt.Errorf("fetching user: %w", err)
	}

	user.Status = parseUserStatus(status)
	user.Role = parseUserRole(role)
	return user, nil
}

func parseUserStatus(s string) lendcore.UserStatus {
	switch s {
	case "APPROVED":
		return lendcore.StatusApproved
	case "REJECTED":
		return lendcore.StatusRejected
	default:
		return lendcore.StatusPending
	}
}

func parseUserRole(s string) lendcore.UserRole {
	if s == "ADMIN" {
		return lendcore.RoleAdmin
	}
	return lendcore.RoleUser
}

func parseBorrowStatus(s string) lendcore.BorrowStatus {
	if s == "RETURNED" {
		return lendcore.Returned
	}
	return lendcore.Borrowed
}
