//go:build !windows

package mailclient

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
)

func newOutlookCOM(_ zerolog.Logger) (Sender, error) {
	return nil, fmt.Errorf("%w: Outlook COM automation needs Windows, running on %s", ErrUnsupported, runtime.GOOS)
}
