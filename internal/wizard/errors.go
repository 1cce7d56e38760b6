package wizard

import (
	"fmt"
)

// ErrorType classifies wizard errors for transport-level mapping.
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInvalidState ErrorType = "invalid_state"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
)

// WizardError is a wizard-specific error carrying the step it occurred in.
type WizardError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *WizardError) Error() string {
	if e == nil {
		return "unknown wizard error"
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *WizardError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a validation error scoped to a step.
func NewValidationError(step, message string) *WizardError {
	return &WizardError{Type: ErrorTypeValidation, Step: step, Message: message}
}

// NewExecutionError wraps a failure that occurred while executing a step.
func NewExecutionError(step string, cause error) *WizardError {
	return &WizardError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// GetErrorType returns the classification of err, defaulting to execution for
// errors raised outside this package.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	if wErr, ok := err.(*WizardError); ok {
		return wErr.Type
	}
	return ErrorTypeExecution
}

// Common wizard errors
var (
	// ErrWizardNotFound is returned when a wizard cannot be found.
	ErrWizardNotFound = &WizardError{Type: ErrorTypeNotFound, Message: "wizard not found"}

	// ErrWizardCompleted is returned when trying to modify a completed wizard.
	ErrWizardCompleted = &WizardError{Type: ErrorTypeInvalidState, Message: "wizard has already completed"}

	// ErrUnknownType is returned when a wizard's type has no registered steps.
	ErrUnknownType = &WizardError{Type: ErrorTypeNotFound, Message: "unknown wizard type"}

	// ErrStepIncomplete is returned when forward navigation is refused because
	// the active step's completion evaluator returned false.
	ErrStepIncomplete = &WizardError{Type: ErrorTypeInvalidState, Message: "current step is not complete"}
)
