package rate

import "errors"

var (
	// ErrStoreUnavailable marks a Redis failure that triggered the local
	// fallback. It is recovered inside the limiter and never reaches the
	// façade caller.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
