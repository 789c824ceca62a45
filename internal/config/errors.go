package config

import "errors"

var (
	// ErrInvalidConfig marks a setting that loaded but cannot be used.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a config file or environment that could not be read.
	ErrLoadConfig = errors.New("load config failed")
)
