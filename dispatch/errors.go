package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gbl08ma/firedispatch/types"
)

// ErrorKind classifies the failures of coordinator operations
type ErrorKind string

const (
	// KindValidation is a field-scoped input problem, reported before any store access
	KindValidation ErrorKind = "validation"
	// KindInvalidTransition is an illegal lifecycle move
	KindInvalidTransition ErrorKind = "invalid_transition"
	// KindAlreadyTerminal is a command on a completed, cancelled or referred incident.
	// Errors of this kind also match ErrInvalidTransition
	KindAlreadyTerminal ErrorKind = "already_terminal"
	// KindIneligibleDestination is a referral to a station that failed the eligibility check
	KindIneligibleDestination ErrorKind = "ineligible_destination"
	// KindConflict is an optimistic concurrency failure. The caller should re-fetch and retry
	KindConflict ErrorKind = "conflict"
	// KindNotFound is a reference to an object that does not exist
	KindNotFound ErrorKind = "not_found"
)

// Field error codes
const (
	CodeRequired                  = "Required"
	CodeInvalidPriority           = "InvalidPriority"
	CodeMissingReason             = "MissingReason"
	CodeDestinationRequired       = "DestinationRequired"
	CodeSameStation               = "SameStation"
	CodeSourceMismatch            = "SourceMismatch"
	CodeStationRequired           = "StationRequired"
	CodeStationMismatch           = "StationMismatch"
	CodeDepartmentRequired        = "DepartmentRequired"
	CodeDepartmentStationMismatch = "DepartmentStationMismatch"
	CodeUnitRequired              = "UnitRequired"
	CodeUnitDepartmentMismatch    = "UnitDepartmentMismatch"
	CodeAlertNotPending           = "AlertNotPending"
)

// FieldError is a validation failure scoped to one input field
type FieldError struct {
	Field   string `json:"field" msgpack:"field"`
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Error is the error type returned by coordinator operations
type Error struct {
	Kind   ErrorKind
	Reason string
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, len(e.Fields))
		for i := range e.Fields {
			msgs[i] = e.Fields[i].Error()
		}
		return string(e.Kind) + ": " + strings.Join(msgs, "; ")
	}
	if e.Reason == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Reason
}

// Is makes errors.Is match errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind || (e.Kind == KindAlreadyTerminal && t.Kind == KindInvalidTransition)
}

// Sentinels for use with errors.Is
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition}
	ErrAlreadyTerminal       = &Error{Kind: KindAlreadyTerminal}
	ErrIneligibleDestination = &Error{Kind: KindIneligibleDestination}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrNotFound              = &Error{Kind: KindNotFound}
)

// ValidationError returns an error of kind KindValidation carrying the given field errors
func ValidationError(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func missingReason() *Error {
	return ValidationError(FieldError{
		Field:   "reason",
		Code:    CodeMissingReason,
		Message: "A reason is required",
	})
}

// mapStoreError converts store sentinel errors into coordinator errors
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrNotFound):
		return &Error{Kind: KindNotFound, Reason: err.Error()}
	case errors.Is(err, types.ErrConflict):
		return &Error{Kind: KindConflict, Reason: "The incident was modified concurrently; reload and try again"}
	}
	return err
}
