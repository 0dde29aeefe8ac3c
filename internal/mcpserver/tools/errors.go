package tools

import (
	"errors"
	"fmt"
)

// FailureKind is the stable tag of a failed invocation
type FailureKind string

const (
	UnknownTool      FailureKind = "UnknownTool"
	InvalidArguments FailureKind = "InvalidArguments"
	BackendError     FailureKind = "BackendError"
	InternalError    FailureKind = "InternalError"
)

// Reason refines an InvalidArguments failure
type Reason string

const (
	ReasonMissingParameter    Reason = "MissingParameter"
	ReasonTypeMismatch        Reason = "TypeMismatch"
	ReasonUnexpectedParameter Reason = "UnexpectedParameter"
)

var (
	// ErrUnknownTool is returned by Resolve for names that were never registered
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool is returned by Register when the name is already taken
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrRegistrySealed is returned by Register once the registry serves requests
	ErrRegistrySealed = errors.New("registry is sealed")
)

// ValidationError reports the first schema violation found in an argument payload
type ValidationError struct {
	Reason   Reason `json:"reason"`
	Param    string `json:"param"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingParameter:
		return fmt.Sprintf("missing required parameter %q", e.Param)
	case ReasonTypeMismatch:
		return fmt.Sprintf("parameter %q must be %s, got %s", e.Param, e.Expected, e.Actual)
	case ReasonUnexpectedParameter:
		return fmt.Sprintf("unexpected parameter %q", e.Param)
	default:
		return fmt.Sprintf("invalid parameter %q", e.Param)
	}
}

func missingParameter(name string) *ValidationError {
	return &ValidationError{Reason: ReasonMissingParameter, Param: name}
}

func typeMismatch(name, expected, actual string) *ValidationError {
	return &ValidationError{Reason: ReasonTypeMismatch, Param: name, Expected: expected, Actual: actual}
}

func unexpectedParameter(name string) *ValidationError {
	return &ValidationError{Reason: ReasonUnexpectedParameter, Param: name}
}

// Failure is the error half of the invocation envelope
type Failure struct {
	Kind    FailureKind    `json:"kind"`
	Reason  Reason         `json:"reason,omitempty"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}
