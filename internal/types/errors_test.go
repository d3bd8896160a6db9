package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  NewError(CONFIG_LOAD_FAILED, "failed to load configuration"),
			want: "[CONFIG_LOAD_FAILED] failed to load configuration",
		},
		{
			name: "with cause",
			err:  WrapError(DATASET_OPEN_FAILED, "cannot open region.tbl", errors.New("no such file")),
			want: "[DATASET_OPEN_FAILED] cannot open region.tbl: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := WrapError(DATASET_ROW_INVALID, "bad row", errors.New("strconv"))

	assert.True(t, errors.Is(err, NewError(DATASET_ROW_INVALID, "")))
	assert.False(t, errors.Is(err, NewError(DATASET_READ_FAILED, "")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(CONFIG_PARSE_FAILED, "parse", cause)

	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))

	wrapped := fmt.Errorf("context: %w", NewError(CONFIG_NOT_FOUND, "missing"))
	assert.Equal(t, CONFIG_NOT_FOUND, CodeOf(wrapped))
}

func TestHasCode_WalksNestedErrors(t *testing.T) {
	inner := NewError(DATASET_READ_FAILED, "read")
	outer := WrapError(CONFIG_LOAD_FAILED, "load", fmt.Errorf("step: %w", inner))

	assert.True(t, HasCode(outer, CONFIG_LOAD_FAILED))
	assert.True(t, HasCode(outer, DATASET_READ_FAILED))
	assert.False(t, HasCode(outer, CONFIG_NOT_FOUND))
	assert.False(t, HasCode(nil, CONFIG_NOT_FOUND))
}
