package lendcore

import (
	"context"

	"github.com/google/uuid"
)

// BorrowBook opens a loan of one copy of the book to the user. This is
// the only place a copy leaves the shelf: the availability check, the
// decrement, and the record insert are one provider transaction, so two
// concurrent borrows can never oversubscribe the last copy and a failed
// insert cannot leave the count understated.
//
// Fails with [ErrUserNotApproved] unless the borrower's status is
// APPROVED, and with [ErrOutOfStock] when no copy was available at commit
// time.
func (e *Engine) BorrowBook(ctx context.Context, userID, bookID string) (BorrowRecord, error) {
	start := e.now()

	record, err := e.openBorrow(ctx, userID, bookID)
	if err == nil {
		e.metricInc(MetricBorrowOpened)
		if e.metrics.LatencyEnabled() {
			e.metrics.Observe(MetricBorrowLatency, e.now().Sub(start))
		}
	}
	e.emitAudit(ctx, auditEventBorrowOpened, err == nil, "", userID, bookID, record.RecordID, err, nil)

	return record, err
}

func (e *Engine) openBorrow(ctx context.Context, userID, bookID string) (BorrowRecord, error) {
	if e.provider == nil {
		return BorrowRecord{}, ErrEngineNotReady
	}
	if userID == "" {
		return BorrowRecord{}, ErrUserNotFound
	}
	if bookID == "" {
		return BorrowRecord{}, ErrBookNotFound
	}

	user, err := e.provider.GetUserByID(ctx, userID)
	if err != nil {
		return BorrowRecord{}, ErrUserNotFound
	}
	if user.Status != StatusApproved {
		return BorrowRecord{}, ErrUserNotApproved
	}

	if _, err := e.provider.GetBook(ctx, bookID); err != nil {
		return BorrowRecord{}, ErrBookNotFound
	}

	now := e.now()
	record := BorrowRecord{
		RecordID:   uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		Status:     Borrowed,
		BorrowDate: now,
		DueDate:    now.Add(e.config.Loan.Period),
	}

	opened, err := e.provider.OpenBorrowRecord(ctx, record)
	if err != nil {
		return BorrowRecord{}, err
	}
	if !opened {
		e.metricInc(MetricBorrowOutOfStock)
		return BorrowRecord{}, ErrOutOfStock
	}

	return record, nil
}

// MarkReturned closes the loan: sets status RETURNED, stamps the return
// date, and gives the copy back to the book's available count. The status
// flip and the ledger increment are one transaction in the provider, so a
// crash between them cannot understate availability.
//
// Calling it again on a closed record returns [ErrAlreadyReturned] and
// changes nothing; the copy is credited exactly once.
func (e *Engine) MarkReturned(ctx context.Context, recordID string) (BorrowRecord, error) {
	record, err := e.closeBorrow(ctx, recordID)
	if err == nil {
		e.metricInc(MetricBorrowReturned)
	}
	e.emitAudit(ctx, auditEventBorrowReturned, err == nil, "", record.UserID, record.BookID, recordID, err, nil)
	return record, err
}

func (e *Engine) closeBorrow(ctx context.Context, recordID string) (BorrowRecord, error) {
	if e.provider == nil {
		return BorrowRecord{}, ErrEngineNotReady
	}
	if recordID == "" {
		return BorrowRecord{}, ErrRecordNotFound
	}

	record, err := e.provider.GetBorrowRecord(ctx, recordID)
	if err != nil {
		return BorrowRecord{}, ErrRecordNotFound
	}
	if record.Status == Returned {
		e.metricInc(MetricBorrowAlreadyReturned)
		return record, ErrAlreadyReturned
	}

	returnDate := e.now()
	closed, err := e.provider.CloseBorrowRecord(ctx, recordID, returnDate)
	if err != nil {
		return BorrowRecord{}, err
	}
	if !closed {
		// A concurrent return won the race; the provider changed nothing.
		e.metricInc(MetricBorrowAlreadyReturned)
		record.Status = Returned
		return record, ErrAlreadyReturned
	}

	record.Status = Returned
	record.ReturnDate = returnDate
	return record, nil
}

// ExtendDueDate pushes the due date out by additionalDays, compounding
// from the current due date rather than from today: two +7 extensions
// yield the original date +14. Zero or negative days selects the
// configured default. Closed loans cannot be extended.
func (e *Engine) ExtendDueDate(ctx context.Context, recordID string, additionalDays int) (BorrowRecord, error) {
	record, err := e.extendDueDate(ctx, recordID, additionalDays)
	if err == nil {
		e.metricInc(MetricBorrowExtended)
	}
	e.emitAudit(ctx, auditEventBorrowExtended, err == nil, "", record.UserID, record.BookID, recordID, err, nil)
	return record, err
}

// extensionDays resolves the requested extension length, substituting the
// configured default for zero or negative requests.
func (e *Engine) extensionDays(additionalDays int) int {
	if additionalDays <= 0 {
		return e.config.Loan.ExtensionDays
	}
	return additionalDays
}

func (e *Engine) extendDueDate(ctx context.Context, recordID string, additionalDays int) (BorrowRecord, error) {
	if e.provider == nil {
		return BorrowRecord{}, ErrEngineNotReady
	}
	if recordID == "" {
		return BorrowRecord{}, ErrRecordNotFound
	}
	additionalDays = e.extensionDays(additionalDays)

	record, err := e.provider.GetBorrowRecord(ctx, recordID)
	if err != nil {
		return BorrowRecord{}, ErrRecordNotFound
	}
	if record.Status == Returned {
		return BorrowRecord{}, ErrRecordClosed
	}

	newDueDate := record.DueDate.AddDate(0, 0, additionalDays)
	if err := e.provider.UpdateDueDate(ctx, recordID, newDueDate); err != nil {
		return BorrowRecord{}, err
	}

	record.DueDate = newDueDate
	return record, nil
}

// IsOverdue reports whether the record is an open loan past its due date
// right now. Derived on every call; nothing is persisted.
func (e *Engine) IsOverdue(record BorrowRecord) bool {
	return record.Overdue(e.now())
}

// SendReminder dispatches a due-date reminder for the record to the
// notifier. Delivery is fire-and-forget: a slow or failing notifier never
// blocks or fails the caller, and a dropped reminder is only counted.
func (e *Engine) SendReminder(ctx context.Context, recordID string) error {
	if e.provider == nil {
		return ErrEngineNotReady
	}
	if recordID == "" {
		return ErrRecordNotFound
	}

	record, err := e.provider.GetBorrowRecord(ctx, recordID)
	if err != nil {
		return ErrRecordNotFound
	}

	e.reminders.Dispatch(Reminder{
		RecordID: record.RecordID,
		UserID:   record.UserID,
		BookID:   record.BookID,
		DueDate:  record.DueDate,
		Overdue:  record.Overdue(e.now()),
	})
	e.metricInc(MetricReminderDispatched)
	e.emitAudit(ctx, auditEventReminderSent, true, "", record.UserID, record.BookID, recordID, nil, nil)

	return nil
}

// RemindOverdue dispatches reminders for every open loan past due.
// Returns the number of reminders handed to the dispatcher.
func (e *Engine) RemindOverdue(ctx context.Context) (int, error) {
	if e.provider == nil {
		return 0, ErrEngineNotReady
	}

	now := e.now()
	records, err := e.provider.ListOpenBorrowsDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, record := range records {
		if !record.Overdue(now) {
			continue
		}
		e.reminders.Dispatch(Reminder{
			RecordID: record.RecordID,
			UserID:   record.UserID,
			BookID:   record.BookID,
			DueDate:  record.DueDate,
			Overdue:  true,
		})
		e.metricInc(MetricReminderDispatched)
		sent++
	}

	return sent, nil
}
