package config

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation limits.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 14
)

// SetupLogFile sends the standard logger to stderr and to a rotating
// ~/.studiobar/logs/studiobar.log. The returned closer flushes the file.
func SetupLogFile() (io.Closer, error) {
	if err := EnsureLogsDir(); err != nil {
		return nil, err
	}
	path, err := LogFile()
	if err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}
