package access

import "errors"

// ErrMissingUser reports an entry point invoked without an authenticated
// subject. This is a caller bug, not a normal denial: handlers translate it
// into a 5xx, never a 403.
var ErrMissingUser = errors.New("access: missing user")
