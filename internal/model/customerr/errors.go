// Package customerr defines the recoverable error kinds the expense model
// reports to its callers. None of them is ever fatal to the process.
package customerr

import "fmt"

// ValidationError means the input failed a field-level or cross-field rule.
type ValidationError struct {
	Err string
}

func (e *ValidationError) Error() string {
	return e.Err
}

// BusinessRuleError means a domain policy rejected an otherwise
// well-formed input, such as an exceeded spending cap.
type BusinessRuleError struct {
	Err string
}

func (e *BusinessRuleError) Error() string {
	return e.Err
}

// NotFoundError means the referenced identifier does not exist in storage.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense not found with ID: %d", e.ID)
}
