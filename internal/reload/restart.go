//go:build !windows

package reload

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// Restart replaces the running process with a fresh instance of the same
// executable, arguments and environment.
func Restart() error {
	executable, err := os.Executable()

	if err != nil {
		return errors.Wrap(err, "failed to locate executable")
	}

	return errors.Wrapf(syscall.Exec(executable, os.Args, os.Environ()), "failed to restart %s", executable)
}
