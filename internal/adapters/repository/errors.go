package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("chart not found")
	ErrMissingUserID = errors.New("record has no user id")
)
