package utils

import "errors"

var (
	ErrEmptyEmail      = errors.New("customer email cannot be empty")
	ErrInvalidEmail    = errors.New("invalid email address format")
	ErrInvalidReason   = errors.New("unknown request reason")
	ErrInvalidPriority = errors.New("unknown request priority")
)
