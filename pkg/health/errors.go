package health

import "errors"

// ErrCheckTimeout replaces the error of a check that ran past the timeout.
var ErrCheckTimeout = errors.New("health: check timeout")
