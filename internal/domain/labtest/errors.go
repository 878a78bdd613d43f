package labtest

import "errors"

var (
	ErrTestNotFound = errors.New("test not found")
	ErrInvalidRate  = errors.New("test rate must be non-negative")
	ErrNameRequired = errors.New("test name is required")
)
