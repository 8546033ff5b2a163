package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when a create or update would duplicate an email.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidInput wraps validation failures detected by the usecase.
	ErrInvalidInput = errors.New("invalid input")
)
