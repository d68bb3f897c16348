// Package errors provides a hierarchical error system for recat operations.
// Each failure class of a run has its own typed error so the command layer
// can print the matching message and exit with the matching code.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// ErrorType represents the category of error for classification and handling.
type ErrorType string

// Error type constants define the failure classes of a recategorization run.
const (
	ErrTypeInput     ErrorType = "input"
	ErrTypeJSON      ErrorType = "json"
	ErrTypeRecord    ErrorType = "record"
	ErrTypeOutput    ErrorType = "output"
	ErrTypeConfig    ErrorType = "config"
	ErrTypeRules     ErrorType = "rules"
	ErrTypeCancelled ErrorType = "cancelled"
)

// Exit codes returned by the recat binary, one per error class.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitInputNotFound = 2
	ExitInvalidJSON   = 3
	ExitMalformed     = 4
	ExitOutputFailure = 5
)

// RecatError is the base error type that provides structured error information.
// Specific error types embed it, so errors.Is matches on Type and errors.As
// can recover either the specific type or the base.
type RecatError struct {
	Type    ErrorType
	Path    string
	Message string
	Cause   error
}

func (e *RecatError) Error() string {
	var msg string
	if e.Path != "" {
		msg = fmt.Sprintf("%s error for %s: %s", e.Type, e.Path, e.Message)
	} else {
		msg = fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RecatError) Unwrap() error {
	return e.Cause
}

// Is implements error identity checking on the error Type.
func (e *RecatError) Is(target error) bool {
	t, ok := target.(*RecatError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// InputNotFoundError reports an input file that does not exist or cannot be read.
type InputNotFoundError struct {
	*RecatError
}

// NewInputNotFoundError creates an input not found error.
func NewInputNotFoundError(path string, cause error) *InputNotFoundError {
	return &InputNotFoundError{
		RecatError: &RecatError{
			Type:    ErrTypeInput,
			Path:    path,
			Message: "could not find file",
			Cause:   cause,
		},
	}
}

// InvalidJSONError reports input content that is not a JSON array.
type InvalidJSONError struct {
	*RecatError
}

// NewInvalidJSONError creates an invalid JSON error.
func NewInvalidJSONError(path, message string, cause error) *InvalidJSONError {
	return &InvalidJSONError{
		RecatError: &RecatError{
			Type:    ErrTypeJSON,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// MalformedRecordError reports an exercise record that lacks a required field
// or holds it with the wrong JSON type. Index is the zero-based position of the
// record in the input array.
type MalformedRecordError struct {
	*RecatError
	Index int
	Field string
}

// NewMalformedRecordError creates a malformed record error.
// An empty field means the record as a whole is malformed.
func NewMalformedRecordError(index int, field, message string) *MalformedRecordError {
	msg := fmt.Sprintf("record %d: field %q %s", index, field, message)
	if field == "" {
		msg = fmt.Sprintf("record %d %s", index, message)
	}
	return &MalformedRecordError{
		RecatError: &RecatError{
			Type:    ErrTypeRecord,
			Message: msg,
		},
		Index: index,
		Field: field,
	}
}

// WithPath attaches the input file path to the error.
func (e *MalformedRecordError) WithPath(path string) *MalformedRecordError {
	e.Path = path
	return e
}

// OutputWriteError reports a failure writing the updated exercises or a change log.
type OutputWriteError struct {
	*RecatError
}

// NewOutputWriteError creates an output write error.
func NewOutputWriteError(path, message string, cause error) *OutputWriteError {
	return &OutputWriteError{
		RecatError: &RecatError{
			Type:    ErrTypeOutput,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// ConfigError represents configuration validation errors.
type ConfigError struct {
	*RecatError
}

// NewConfigError creates a configuration error without path context.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		RecatError: &RecatError{
			Type:    ErrTypeConfig,
			Message: message,
			Cause:   cause,
		},
	}
}

// NewConfigErrorWithPath creates a configuration error with file context.
func NewConfigErrorWithPath(path, message string, cause error) *ConfigError {
	return &ConfigError{
		RecatError: &RecatError{
			Type:    ErrTypeConfig,
			Path:    path,
			Message: message,
			Cause:   cause,
		},
	}
}

// RulesError represents an invalid classification rule set.
type RulesError struct {
	*RecatError
}

// NewRulesError creates a rule set error.
func NewRulesError(message string, cause error) *RulesError {
	return &RulesError{
		RecatError: &RecatError{
			Type:    ErrTypeRules,
			Message: message,
			Cause:   cause,
		},
	}
}

// NewCancelledError wraps a context error that stopped a run early.
func NewCancelledError(cause error) *RecatError {
	return &RecatError{
		Type:    ErrTypeCancelled,
		Message: "run cancelled",
		Cause:   cause,
	}
}

// WrapInputError converts an error from opening or reading the input file
// into a typed error. Every read failure is reported as a missing file.
func WrapInputError(path string, err error) error {
	if err == nil {
		return nil
	}
	return NewInputNotFoundError(path, err)
}

// WrapOutputError converts an error from writing an output file into a typed error.
func WrapOutputError(path string, err error) error {
	if err == nil {
		return nil
	}

	absPath, _ := filepath.Abs(path)
	switch {
	case stderrors.Is(err, fs.ErrPermission):
		return NewOutputWriteError(absPath, "permission denied", err)
	case stderrors.Is(err, fs.ErrNotExist):
		return NewOutputWriteError(absPath, "directory does not exist", err)
	default:
		return NewOutputWriteError(absPath, "write failed", err)
	}
}

// ExitCode maps an error to the process exit code of its class.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var notFound *InputNotFoundError
	var invalid *InvalidJSONError
	var malformed *MalformedRecordError
	var output *OutputWriteError

	switch {
	case stderrors.As(err, &notFound):
		return ExitInputNotFound
	case stderrors.As(err, &invalid):
		return ExitInvalidJSON
	case stderrors.As(err, &malformed):
		return ExitMalformed
	case stderrors.As(err, &output):
		return ExitOutputFailure
	default:
		return ExitFailure
	}
}

// UserMessage renders the lines shown to the user for an error. The first line
// always starts with "Error:"; known classes add a second hint line.
func UserMessage(err error) []string {
	var notFound *InputNotFoundError
	var invalid *InvalidJSONError

	switch {
	case stderrors.As(err, &notFound):
		return []string{
			fmt.Sprintf("Error: Could not find file %s", notFound.Path),
			"Make sure the file exists and the path is correct.",
		}
	case stderrors.As(err, &invalid):
		return []string{
			fmt.Sprintf("Error: Invalid JSON in %s", invalid.Path),
			"Check that the file contains valid JSON data.",
		}
	default:
		return []string{fmt.Sprintf("Error: %s", err.Error())}
	}
}
