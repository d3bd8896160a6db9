package types

import "errors"

// ErrorCode names a class of failure, e.g. CONFIG_NOT_FOUND.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Dataset error codes
const (
	DATASET_OPEN_FAILED ErrorCode = "DATASET_OPEN_FAILED"
	DATASET_READ_FAILED ErrorCode = "DATASET_READ_FAILED"
	DATASET_ROW_INVALID ErrorCode = "DATASET_ROW_INVALID"
)

// Error is a coded error. Two Errors match under errors.Is when their codes are equal,
// so callers test for a failure class without comparing messages.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error renders "[CODE] message", followed by ": cause" when there is one.
func (e *Error) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// HasCode reports whether any *Error in err's chain carries code, including
// errors nested in another Error's Cause.
func HasCode(err error, code ErrorCode) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.Cause
	}
	return false
}
