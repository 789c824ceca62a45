package model

import "errors"

// Request validation errors.
var (
	ErrMissingUser      = errors.New("user id is required")
	ErrMissingBirthTime = errors.New("birth time is required")
	ErrInvalidLocation  = errors.New("location out of range")
	ErrNoEphemeris      = errors.New("no ephemeris provided")
)
