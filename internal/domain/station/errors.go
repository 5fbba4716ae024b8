package station

import "errors"

// ErrMalformedFeed is returned by Decode when the body is not a JSON object.
var ErrMalformedFeed = errors.New("malformed station feed")
