package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/obonovai/graphonauts/internal/bench"
	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/types"
)

// Process exit codes.
const (
	ExitSuccess         = 0
	ExitError           = 1
	ExitTimeout         = 3
	ExitCancelled       = 4
	ExitConfigError     = 10
	ExitConnectionError = 12
	// ExitPartial reports a run that finished with failed batches, table errors or
	// failed queries.
	ExitPartial     = 13
	ExitSchemaError = 14
)

// CLIError is an error that carries its own exit code. Message is always shown;
// Cause only with --verbose.
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CLIError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *CLIError) Unwrap() error { return e.Cause }

// NewCLIError returns an error exiting with code.
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapError returns an error exiting with code whose cause is err.
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Cause: err}
}

// codeGroups maps error codes to exit codes; the first group containing a code in
// the error chain wins.
var codeGroups = []struct {
	exit  int
	codes []types.ErrorCode
}{
	{ExitConfigError, []types.ErrorCode{
		types.CONFIG_LOAD_FAILED,
		types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED,
		types.CONFIG_NOT_FOUND,
		graph.ErrCodeGraphInvalidConfig,
		graph.ErrCodeGraphUnsupportedBackend,
		bench.ErrCodeUnknownQuery,
	}},
	{ExitConnectionError, []types.ErrorCode{graph.ErrCodeGraphConnectionFailed}},
	{ExitSchemaError, []types.ErrorCode{
		graph.ErrCodeGraphSchemaProvisionFailed,
		graph.ErrCodeGraphPropagationTimeout,
	}},
}

// ExitCodeOf returns the exit code for err.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	switch {
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	}
	for _, g := range codeGroups {
		if slices.ContainsFunc(g.codes, func(c types.ErrorCode) bool { return types.HasCode(err, c) }) {
			return g.exit
		}
	}
	return ExitError
}

// Report writes err to w and returns the exit code for it.
func Report(w io.Writer, err error, verbose bool) int {
	code := ExitCodeOf(err)
	switch {
	case err == nil:
	case code == ExitCancelled:
		fmt.Fprintln(w, "Operation cancelled")
	case code == ExitTimeout:
		fmt.Fprintln(w, "Operation timed out")
	default:
		var cliErr *CLIError
		if errors.As(err, &cliErr) {
			fmt.Fprintln(w, "Error:", cliErr.Message)
			if verbose && cliErr.Cause != nil {
				fmt.Fprintln(w, "Cause:", cliErr.Cause)
			}
		} else {
			fmt.Fprintln(w, "Error:", err)
		}
	}
	return code
}

// VerboseFromEnv reports whether verbose output was requested before flags are parsed,
// through GRAPHONAUTS_VERBOSE or a -v/--verbose argument. Panic recovery uses it.
func VerboseFromEnv() bool {
	if os.Getenv("GRAPHONAUTS_VERBOSE") != "" {
		return true
	}
	return slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose")
}
