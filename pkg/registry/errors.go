package registry

import "errors"

var (
	ErrReadConfig            = errors.New("registry: failed to read config")
	ErrParseConfig           = errors.New("registry: failed to parse config")
	ErrPlatformNotConfigured = errors.New("registry: platform not configured")
	ErrNoPlatformSelected    = errors.New("registry: no platform selected")
)
