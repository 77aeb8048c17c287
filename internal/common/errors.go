// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Taxonomy errors.
	ErrDuplicateName  = errors.New("duplicate sibling category name")
	ErrDanglingParent = errors.New("parent category does not exist")
	ErrCycle          = errors.New("category hierarchy would contain a cycle")
	ErrSystemCategory = errors.New("system category cannot be modified")

	// Rule errors.
	ErrRuleReference = errors.New("rule references a missing or inactive category")

	// Generic write rejection.
	ErrValidation = errors.New("validation failed")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
