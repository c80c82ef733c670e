// Package postgres provides a reference [lendcore.LibraryProvider] backed
// by PostgreSQL through pgx.
//
// The two atomicity contracts of the provider interface are implemented
// with the store's own primitives rather than application-level locking:
// the availability decrement is a single conditional UPDATE guarded by
// available_copies > 0, and closing a borrow record flips the record and
// credits the copy inside one transaction.
package postgres
