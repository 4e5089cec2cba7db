package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"healthdeck/internal/platform/config"
)

// Init configures the global logger from config. Every line carries the
// service name so log aggregation can tell the server, monitor, and
// migrate processes apart.
func Init(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	switch {
	case cfg.Output == "file" && cfg.FilePath != "":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.FilePath).Msg("failed to open log file, logging to stdout")
		} else {
			out = file
		}
	case cfg.Format == "text":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", "healthdeck").
		Logger()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}
