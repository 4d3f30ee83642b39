// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for all diagutil commands.
//
// STANDARDIZED PATTERN:
//   - ALWAYS return errors (never just print and return nil)
//   - Let the caller decide how to display errors
//   - Use structured error types for better error handling

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/diagutil/internal/config"
	"github.com/jeranaias/diagutil/internal/spreadsheet"
	"github.com/jeranaias/diagutil/internal/util"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitExternalError indicates an external program (Excel) failed
	ExitExternalError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitCheckFailed indicates a check command answered "no"
	// (framework too old, not an Excel file).
	ExitCheckFailed = 10
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "convert", "rm-family")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents invalid command-line input.
type UsageError struct {
	Field   string // Argument or flag that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid usage (optional)
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// CheckFailedError reports a negative answer from a check command. It is
// not a malfunction; it only selects ExitCheckFailed.
type CheckFailedError struct {
	What string
}

func (e *CheckFailedError) Error() string {
	return e.What
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, reason string, err error) error {
	return &CommandError{
		Command: command,
		Reason:  reason,
		Err:     err,
	}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{
		Field:   argName,
		Reason:  "required argument missing",
		Example: usage,
	}
}

// ErrInvalidValue creates an error for a malformed argument.
func ErrInvalidValue(field, value, reason string) error {
	return &UsageError{Field: field, Value: value, Reason: reason}
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err to w in a consistent format. In JSON mode the
// error is emitted as a JSONResponse.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	var reported *reportedError
	if err == nil || errors.As(err, &reported) {
		return
	}

	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.ErrorType = errorType(err)
		resp.Details = errorJSON(err)
		_ = resp.Print(w)
		return
	}

	var check *CheckFailedError
	if errors.As(err, &check) {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("[NO]"), check.What)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

func errorType(err error) string {
	var usage *UsageError
	var check *CheckFailedError
	var cmd *CommandError
	switch {
	case errors.As(err, &usage):
		return "usage_error"
	case errors.As(err, &check):
		return "check_failed"
	case config.IsValidationError(err):
		return "config_error"
	case util.KindOf(err) != util.KindUnknown:
		return util.KindOf(err).String()
	case errors.As(err, &cmd):
		return "command_error"
	default:
		return "generic_error"
	}
}

// errorJSON returns the FileError fields of err as JSON, or nil.
func errorJSON(err error) json.RawMessage {
	var fe *util.FileError
	if !errors.As(err, &fe) {
		return nil
	}
	data, mErr := json.Marshal(map[string]string{
		"op":   fe.Op,
		"path": fe.Path,
		"kind": fe.Kind.String(),
	})
	if mErr != nil {
		return nil
	}
	return data
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var check *CheckFailedError
	if errors.As(err, &check) {
		return ExitCheckFailed
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	if config.IsValidationError(err) {
		return ExitConfigError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}
	if errors.Is(err, spreadsheet.ErrAutomationUnavailable) {
		return ExitExternalError
	}

	switch util.KindOf(err) {
	case util.KindNotFound:
		return ExitNotFoundError
	case util.KindTimeout:
		return ExitTimeoutError
	case util.KindInvalid:
		return ExitUsageError
	case util.KindExternal:
		return ExitExternalError
	}

	return ExitGeneralError
}
