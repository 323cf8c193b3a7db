package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrConnect = errors.New("store connection failed")
	ErrQuery   = errors.New("store query failed")
	ErrUpsert  = errors.New("store upsert failed")
)
