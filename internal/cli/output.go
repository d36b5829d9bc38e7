package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/qengine/internal/qerr"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Suite failure (one or more cases failed)
	ExitCommandError = 2 // Command error (bad query, unreadable input, etc.)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // Input could not be read
	ErrCodeSchema      = "E003" // Schema file or introspection failed
	ErrCodeConfig      = "E004" // Invalid flag or configuration value
	ErrCodeSuiteFailed = "E005" // Suite could not be loaded or run
	ErrCodeHistory     = "E006" // History file could not be opened or read

	// Query errors, one per error kind.
	ErrCodeMalformedInput       = "E201"
	ErrCodeInvalidQuery         = "E202"
	ErrCodeOperatorNotFound     = "E203"
	ErrCodePlaceholder          = "E204"
	ErrCodeQueryDeserialization = "E205"
)

var queryErrorCodes = map[qerr.Kind]string{
	qerr.MalformedInput:        ErrCodeMalformedInput,
	qerr.InvalidQuery:          ErrCodeInvalidQuery,
	qerr.OperatorNotFound:      ErrCodeOperatorNotFound,
	qerr.PlaceholderResolution: ErrCodePlaceholder,
	qerr.QueryDeserialization:  ErrCodeQueryDeserialization,
}

// ErrorCode returns the CLI error code for err.
func ErrorCode(err error) string {
	if code, ok := queryErrorCodes[qerr.KindOf(err)]; ok {
		return code
	}
	return ErrCodeGeneric
}

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is true once the error has been written to the output.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// WasReported reports whether err has already been written by a formatter.
func WasReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status    string    `json:"status"`               // "ok" or "error"
	Data      any       `json:"data,omitempty"`       // success payload
	Error     *CLIError `json:"error,omitempty"`      // error details
	RequestID string    `json:"request_id,omitempty"` // request correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E201", "E202", etc.
	Kind    string `json:"kind,omitempty"`    // query error kind, e.g. "INVALID_QUERY"
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// QueryErrorDetails locates a query error.
type QueryErrorDetails struct {
	Path     string `json:"path,omitempty"`
	Column   string `json:"column,omitempty"`
	Operator string `json:"operator,omitempty"`
	Token    string `json:"token,omitempty"`
	Fragment string `json:"fragment,omitempty"`
}

// Success outputs a successful result in the configured format. Text
// output is produced by text, which may be nil to print data with %v.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	return f.write(&CLIError{Code: code, Message: message, Details: details})
}

func (f *OutputFormatter) write(e *CLIError) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{Status: "error", Error: e})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	if f.Verbose && e.Details != nil {
		fmt.Fprintf(f.Writer, "Details: %+v\n", e.Details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// Query errors carry their kind and location; other errors use code.
func (f *OutputFormatter) Fail(code string, err error) error {
	e := &CLIError{Code: code, Message: err.Error()}

	var qe *qerr.Error
	if errors.As(err, &qe) {
		e.Code = ErrorCode(err)
		e.Kind = string(qe.Kind)
		e.Details = QueryErrorDetails{
			Path:     qe.Path,
			Column:   qe.Column,
			Operator: qe.Operator,
			Token:    qe.Token,
			Fragment: qe.Fragment,
		}
	}
	_ = f.write(e)

	exitErr := WrapExitError(ExitCommandError, e.Code, err)
	exitErr.Reported = true
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
