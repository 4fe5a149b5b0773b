// Package notify delivers studio transition notifications.
package notify

import (
	"errors"
	"log"

	"github.com/gen2brain/beeep"
)

// Sink accepts a notification. Callers treat delivery as fire-and-forget:
// errors are logged, never propagated to the user.
type Sink interface {
	Notify(title, body string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(title, body string) error

// Notify calls f.
func (f SinkFunc) Notify(title, body string) error {
	return f(title, body)
}

// Desktop shows native desktop notifications.
type Desktop struct {
	// Icon is an optional path to an icon file.
	Icon string
}

// Notify shows a desktop notification.
func (d Desktop) Notify(title, body string) error {
	return beeep.Notify(title, body, d.Icon)
}

// Log writes notifications to the standard logger.
type Log struct{}

// Notify logs the notification.
func (Log) Notify(title, body string) error {
	log.Printf("[notify] %s: %s", title, body)
	return nil
}

// Multi fans a notification out to every sink. All sinks are attempted;
// their errors are joined.
type Multi []Sink

// Notify delivers to every sink in order.
func (m Multi) Notify(title, body string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(string, string) error { return nil })
