// Package logging configures the single zerolog.Logger the rest of the
// module logs through: pretty console output on an interactive terminal,
// structured JSON lines otherwise.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds a logger for the given level name ("debug", "info", "warn",
// "error"). forceJSON overrides terminal auto-detection, used when stdout
// is known to be captured by a supervisor.
func New(levelName string, forceJSON bool) zerolog.Logger {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		return fmt.Sprintf("%-29s", fmt.Sprintf("%s:%d", short, line))
	}

	var writer zerolog.ConsoleWriter
	useConsole := !forceJSON && isatty.IsTerminal(os.Stdout.Fd())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if useConsole {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
