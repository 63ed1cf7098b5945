package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger writing to stdout and a rotating
// file under logDir. Unknown levels fall back to info.
func New(logDir, level string) zerolog.Logger {
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "rollbook.log"),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		// fall back to stdout only
		return zerolog.New(os.Stdout).Level(parseLevel(level)).With().Timestamp().Logger()
	}

	w := io.MultiWriter(os.Stdout, fileWriter)
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
