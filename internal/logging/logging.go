// Package logging configures the global zerolog logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the zerolog logger from APP_ENV and LOG_LEVEL.
// Development gets a console writer; everything else logs JSON.
func Setup() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(Level(os.Getenv("LOG_LEVEL")))

	log.Debug().
		Str("level", zerolog.GlobalLevel().String()).
		Msg("Logger initialized")
}

// Level parses a log level name, falling back to info
func Level(name string) zerolog.Level {
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
