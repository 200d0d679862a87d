package lock

import "errors"

// ErrLockTimeout is returned by WithLockContext when the user's lock stays
// held past the deadline.
var ErrLockTimeout = errors.New("lock acquisition timeout")
