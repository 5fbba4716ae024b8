package repository

import "errors"

// ErrNotLoaded is returned while no feed has been loaded yet.
var ErrNotLoaded = errors.New("station feed not loaded")
