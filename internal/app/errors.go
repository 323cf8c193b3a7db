package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotConfigured means the service lacks a source or sink.
	ErrNotConfigured = errors.New("service missing source or sink")
)
