package search

import "errors"

// ErrUnknownScope is returned by ParseScope for names outside the scope set.
var ErrUnknownScope = errors.New("unknown search scope")
