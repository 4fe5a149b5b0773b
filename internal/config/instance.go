package config

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/watchfire-io/studiobar/internal/models"
)

// ErrAlreadyRunning is returned by AcquireInstance when another tray app
// holds the lock.
var ErrAlreadyRunning = errors.New("studiobar is already running")

// Instance is the single-instance guard held by the tray app.
type Instance struct {
	lock *flock.Flock
	path string
}

// AcquireInstance takes the ~/.studiobar/studiobar.lock file lock and writes
// instance.yaml. The lock is released by Release or by process exit.
func AcquireInstance(info *models.InstanceInfo) (*Instance, error) {
	if err := EnsureGlobalDir(); err != nil {
		return nil, err
	}
	lockPath, err := LockFile()
	if err != nil {
		return nil, err
	}
	infoPath, err := InstanceFile()
	if err != nil {
		return nil, err
	}

	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	if err := SaveYAML(infoPath, info, 0644); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return &Instance{lock: lock, path: infoPath}, nil
}

// Release removes instance.yaml and unlocks.
func (i *Instance) Release() error {
	if err := os.Remove(i.path); err != nil && !os.IsNotExist(err) {
		_ = i.lock.Unlock()
		return err
	}
	return i.lock.Unlock()
}

// LoadInstanceInfo returns the running tray app's info, or nil if it is not
// running. A leftover instance.yaml from a dead process is removed.
func LoadInstanceInfo() (*models.InstanceInfo, error) {
	path, err := InstanceFile()
	if err != nil {
		return nil, err
	}
	if !FileExists(path) {
		return nil, nil
	}

	var info models.InstanceInfo
	if err := LoadYAML(path, &info); err != nil {
		return nil, err
	}

	if !processAlive(info.PID) {
		_ = os.Remove(path)
		return nil, nil
	}
	return &info, nil
}

// processAlive sends signal 0 to pid.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
