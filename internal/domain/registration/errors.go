package registration

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("registration not found")
	ErrUnknownField = errors.New("unknown field")
	ErrNotEditing   = errors.New("registration already submitted")
	ErrNotSubmitted = errors.New("registration not submitted")
	ErrClosed       = errors.New("registration closed")
	ErrValidation   = errors.New("validation failed")
)
