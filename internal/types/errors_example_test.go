package types_test

import (
	"errors"
	"fmt"

	"github.com/obonovai/graphonauts/internal/types"
)

func Example_basicError() {
	err := types.NewError(types.CONFIG_LOAD_FAILED, "failed to load configuration file")
	fmt.Println(err.Error())
	// Output: [CONFIG_LOAD_FAILED] failed to load configuration file
}

func Example_wrappedError() {
	originalErr := errors.New("no such file or directory")
	err := types.WrapError(types.DATASET_OPEN_FAILED, "open data/region.tbl", originalErr)
	fmt.Println(err.Error())
	fmt.Println(errors.Is(err, originalErr))
	// Output:
	// [DATASET_OPEN_FAILED] open data/region.tbl: no such file or directory
	// true
}

// Errors match by code, whatever their message.
func Example_errorMatching() {
	err1 := types.NewError(types.DATASET_ROW_INVALID, "region.tbl:2: expected 3 fields")
	err2 := types.NewError(types.DATASET_ROW_INVALID, "different message")
	err3 := types.NewError(types.DATASET_READ_FAILED, "read failed")

	fmt.Printf("err1 matches err2: %v\n", errors.Is(err1, err2))
	fmt.Printf("err1 matches err3: %v\n", errors.Is(err1, err3))
	// Output:
	// err1 matches err2: true
	// err1 matches err3: false
}

func Example_errorExtraction() {
	err := fmt.Errorf("load: %w",
		types.NewError(types.DATASET_READ_FAILED, "unexpected EOF"))

	var coded *types.Error
	if errors.As(err, &coded) {
		fmt.Printf("Code: %s\n", coded.Code)
		fmt.Printf("Message: %s\n", coded.Message)
	}
	fmt.Println(types.HasCode(err, types.DATASET_READ_FAILED))
	// Output:
	// Code: DATASET_READ_FAILED
	// Message: unexpected EOF
	// true
}
