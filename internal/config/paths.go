// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the studiobar directory in the user's home.
	GlobalDirName = ".studiobar"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"
)

// File names
const (
	SettingsFileName = "settings.yaml"
	InstanceFileName = "instance.yaml"
	LockFileName     = "studiobar.lock"
	LogFileName      = "studiobar.log"
)

// GlobalDir returns the path to the studiobar directory (~/.studiobar/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

func globalPath(parts ...string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, parts...)...), nil
}

// SettingsFile returns the path to the settings.yaml file.
func SettingsFile() (string, error) {
	return globalPath(SettingsFileName)
}

// InstanceFile returns the path to the instance.yaml file.
func InstanceFile() (string, error) {
	return globalPath(InstanceFileName)
}

// LockFile returns the path to the single-instance lock file.
func LockFile() (string, error) {
	return globalPath(LockFileName)
}

// LogsDir returns the path to the logs directory.
func LogsDir() (string, error) {
	return globalPath(LogsDirName)
}

// LogFile returns the path to the rotating application log.
func LogFile() (string, error) {
	return globalPath(LogsDirName, LogFileName)
}

// EnsureGlobalDir creates the studiobar directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureLogsDir creates the logs directory if it doesn't exist.
func EnsureLogsDir() error {
	dir, err := LogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
