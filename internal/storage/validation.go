package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calebds/ledgertag/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategory validates a category before a write.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category name", ErrEmptyString)
	}
	return nil
}

// validateRule validates a rule's structure before a write. Referential
// checks against the category table happen at the call sites that write.
func validateRule(rule *model.CategoryRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateString(rule.RuleName, "rule_name"); err != nil {
		return err
	}
	return rule.Validate()
}

// validateCorrection validates a correction before appending it.
// Corrections are deliberately permissive: an empty description or a
// zero amount is acceptable evidence.
func validateCorrection(correction *model.Correction) error {
	if correction == nil {
		return fmt.Errorf("%w: correction", ErrNilParameter)
	}
	if correction.ID == "" {
		return fmt.Errorf("%w: correction ID", ErrEmptyString)
	}
	return nil
}
