package core

import (
	"fmt"
	"strings"
)

// FieldError is one structural violation, pinned to the dotted path of the
// offending field.
type FieldError struct {
	Path    string `json:"field_path"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// StructuralValidationError aggregates every structural violation found in
// one document. The schema validator never stops at the first problem, so
// Errors covers the whole document in one pass.
type StructuralValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e *StructuralValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("structural validation failed: %s", e.Errors[0].Error())
	}
	parts := make([]string, 0, len(e.Errors))
	for i := range e.Errors {
		parts = append(parts, e.Errors[i].Error())
	}
	return fmt.Sprintf("structural validation failed with %d violations: %s",
		len(e.Errors), strings.Join(parts, "; "))
}

// RuleViolationError is the strict-mode escalation of error-severity issues.
// Warning and info issues never appear here.
type RuleViolationError struct {
	Issues []Issue
}

// Error implements the error interface.
func (e *RuleViolationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", issue.RuleID, issue.FieldPath, issue.Message))
	}
	return fmt.Sprintf("business validation failed with %d error(s): %s",
		len(e.Issues), strings.Join(parts, "; "))
}
