package common

import (
	"io"
	"time"

	guuid "github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewLogger creates console logger writing to w;
// debug level is enabled only in verbose mode
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// GetRandomID generates random uuid string
func GetRandomID() (string, error) {
	id, err := guuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Timer starts measuring a stage; the returned func logs and returns the time taken
func Timer(lg zerolog.Logger, stage string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		elapsed := time.Since(start)
		lg.Info().Str("stage", stage).Dur("elapsed", elapsed).Msg("stage finished")
		return elapsed
	}
}
