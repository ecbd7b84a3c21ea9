package mailclient

import (
	"errors"
	"fmt"

	ole "github.com/go-ole/go-ole"
)

// sFalse is CoInitialize's result when COM is already set up on the thread.
const sFalse = 0x00000001

// checkCoInitialize maps a CoInitialize result to an error. A nil result
// means COM is initialized and CoUninitialize must be called.
func checkCoInitialize(err error) error {
	if err == nil {
		return nil
	}
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
		return nil
	}
	return fmt.Errorf("initialize COM: %w", err)
}
