package service

import "errors"

// ErrNoFetcher is returned by Refresh when no feed source was configured.
var ErrNoFetcher = errors.New("no feed fetcher configured")
