package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/obonovai/graphonauts/internal/types"
)

// Graph backend error codes
const (
	// ErrCodeGraphConnectionFailed marks an unreachable host or rejected credentials.
	// It is the only fatal error of a load run.
	ErrCodeGraphConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"

	// ErrCodeGraphSchemaProvisionFailed marks a namespace, kind or index declaration
	// that failed for a reason other than "already exists".
	ErrCodeGraphSchemaProvisionFailed types.ErrorCode = "GRAPH_SCHEMA_PROVISION_FAILED"

	// ErrCodeGraphBatchWriteFailed marks one rejected bulk write.
	ErrCodeGraphBatchWriteFailed types.ErrorCode = "GRAPH_BATCH_WRITE_FAILED"

	// ErrCodeGraphQueryFailed marks one failed query.
	ErrCodeGraphQueryFailed types.ErrorCode = "GRAPH_QUERY_FAILED"

	// ErrCodeGraphPreconditionFailed marks an operation invoked in the wrong lifecycle state.
	ErrCodeGraphPreconditionFailed types.ErrorCode = "GRAPH_PRECONDITION_FAILED"

	ErrCodeGraphInvalidConfig      types.ErrorCode = "GRAPH_INVALID_CONFIG"
	ErrCodeGraphClearFailed        types.ErrorCode = "GRAPH_CLEAR_FAILED"
	ErrCodeGraphPropagationTimeout types.ErrorCode = "GRAPH_PROPAGATION_TIMEOUT"
	ErrCodeGraphConnectionClosed   types.ErrorCode = "GRAPH_CONNECTION_CLOSED"
	ErrCodeGraphUnsupportedBackend types.ErrorCode = "GRAPH_UNSUPPORTED_BACKEND"
)

// IsConnectionError reports whether err is a ConnectionError.
func IsConnectionError(err error) bool {
	return types.HasCode(err, ErrCodeGraphConnectionFailed)
}

// driverError codes a failed driver call. A failure lost recognises as a broken
// transport becomes a ConnectionError so the run stops; anything else gets code.
// Cancellation is never reported as a lost connection.
func driverError(err error, lost func(error) bool, code types.ErrorCode, message string) error {
	cancelled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if IsConnectionError(err) || (!cancelled && lost != nil && lost(err)) {
		return types.WrapError(ErrCodeGraphConnectionFailed, message, err)
	}
	return types.WrapError(code, message, err)
}

// IsPreconditionError reports whether err is a lifecycle precondition failure.
func IsPreconditionError(err error) bool {
	return types.HasCode(err, ErrCodeGraphPreconditionFailed)
}

// IsBatchWriteError reports whether err is a BatchWriteError.
func IsBatchWriteError(err error) bool {
	return types.HasCode(err, ErrCodeGraphBatchWriteFailed)
}

// IsAlreadyExists reports whether a DDL error only says the object is already there.
// Backends word this differently, so the check is textual.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"already exists",
		"already exist",
		"equivalentschemarulealreadyexists",
		"existed",
		"duplicate name",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// TruncateError shortens an error message to at most n bytes for logging.
func TruncateError(err error, n int) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) <= n {
		return msg
	}
	return msg[:n] + "..."
}
