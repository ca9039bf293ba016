package reload

import "github.com/pkg/errors"

// Restart is not supported on windows since the process cannot be replaced.
func Restart() error {
	return errors.New("reload is not supported on windows")
}
