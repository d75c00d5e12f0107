// Package logging builds the zerolog logger used by every service,
// replacing the Python originals' structlog setup with its closest Go
// ecosystem equivalent.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a JSON logger writing to stdout at the given level (trace,
// debug, info, warn, error), tagged with the service name.
func New(service, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger()
}
