package logger

import (
	"io"
	"os"
	"path/filepath"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"lpservice/internal/config"
)

// Fields carries structured context for a single entry.
type Fields = logrus.Fields

// Logger provides leveled logging (debug/info/warning/error) to stdout and a rotated log file.
type Logger struct {
	log *logrus.Logger
}

// New creates a Logger writing to stdout and, outside of tests, to
// LogDirectory/lpservice.log with size-based rotation.
func New(cfg *config.Config) *Logger {
	l := logrus.New()
	l.SetFormatter(&formatter.Formatter{
		NoColors:        cfg.AppEnv == "production",
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		FieldsOrder:     []string{"request_id", "component"},
	})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	writers := []io.Writer{os.Stdout}
	if cfg.AppEnv != "test" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDirectory, "lpservice.log"),
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100, // megabytes
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	l.SetOutput(io.MultiWriter(writers...))

	return &Logger{log: l}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{log: l}
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Errorf(format, v...)
}

// WithFields returns an entry carrying the given structured fields.
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}
