package aggregate

import "errors"

// ErrNoDefaultYear means the feed has no default_year and the caller asked
// for it to be mandatory.
var ErrNoDefaultYear = errors.New("feed has no default year")

// ErrRangeTooLarge means a requested series spans more years than allowed.
var ErrRangeTooLarge = errors.New("series range too large")
