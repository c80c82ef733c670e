package lendcore

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the lending engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrUserNotFound is an exported constant or variable used by the lending engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is an exported constant or variable used by the lending engine.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotApproved is an exported constant or variable used by the lending engine.
	ErrUserNotApproved = errors.New("user not approved for borrowing")
	// ErrInvalidStatus is an exported constant or variable used by the lending engine.
	ErrInvalidStatus = errors.New("invalid user status")
	// ErrInvalidRole is an exported constant or variable used by the lending engine.
	ErrInvalidRole = errors.New("invalid user role")
	// ErrBookNotFound is an exported constant or variable used by the lending engine.
	ErrBookNotFound = errors.New("book not found")
	// ErrOutOfStock is an exported constant or variable used by the lending engine.
	ErrOutOfStock = errors.New("no copies available")
	// ErrRecordNotFound is an exported constant or variable used by the lending engine.
	ErrRecordNotFound = errors.New("borrow record not found")
	// ErrAlreadyReturned is an exported constant or variable used by the lending engine.
	ErrAlreadyReturned = errors.New("borrow record already returned")
	// ErrRecordClosed is an exported constant or variable used by the lending engine.
	ErrRecordClosed = errors.New("operation illegal on returned record")
	// ErrRateLimited is an exported constant or variable used by the lending engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrRegistrationDisabled is an exported constant or variable used by the lending engine.
	ErrRegistrationDisabled = errors.New("registration disabled")
	// ErrRegistrationInvalid is an exported constant or variable used by the lending engine.
	ErrRegistrationInvalid = errors.New("invalid registration request")
	// ErrWeakPassword is an exported constant or variable used by the lending engine.
	ErrWeakPassword = errors.New("password policy violation")
	// ErrStoreFault is an exported constant or variable used by the lending engine.
	ErrStoreFault = errors.New("store operation failed")
)
