package artifact

import "errors"

// Sentinel kinds for artifact errors. Both abort a run before any
// computation starts.
var (
	ErrRead      = errors.New("coefficient artifact unreadable")
	ErrMalformed = errors.New("coefficient artifact malformed")
)
