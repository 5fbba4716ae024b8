package feed

import "errors"

var (
	// ErrFetch is returned when the feed could not be retrieved at all.
	ErrFetch = errors.New("feed fetch failed")
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("feed returned unexpected status")
	// ErrDecode is returned when the body is not a feed document.
	ErrDecode = errors.New("feed decode failed")
)
