package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogging sets the global log level, writing human readable output
// while running in the development environment.
func ConfigureLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)

	if err != nil {
		return errors.Wrapf(err, "invalid log level %s", level)
	}

	zerolog.SetGlobalLevel(lvl)

	if GetCurrentEnvironment() == DevelopmentEnvironment {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return nil
}
