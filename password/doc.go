// Package password implements password hashing and verification with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Registration policy and
// throttling are enforced by the Engine; credential checks at login belong
// to the application, which verifies against the stored hash with
// [Argon2.Verify].
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other lendcore package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
