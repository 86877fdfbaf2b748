// Package logging configures the process-wide logrus logger. When a log
// directory is set, output is mirrored to a size-rotated file alongside
// stdout.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes the standard logger. logDir may be empty, in which case
// logs go to stdout only.
func Setup(logDir string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(logrus.InfoLevel)

	if logDir == "" {
		logrus.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "tubenotes.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return nil
}
