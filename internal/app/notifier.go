package app

import (
	"log"
	"sync"

	"github.com/watchfire-io/studiobar/internal/models"
	"github.com/watchfire-io/studiobar/internal/notify"
)

// natsSink is a notify.Sink holding a connection.
type natsSink interface {
	notify.Sink
	Close()
}

func dialNATS(url, subject string) (natsSink, error) {
	conn, err := notify.DialNATS(url, subject)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// notifier delivers transition notifications to the desktop and, when
// configured, to NATS. It can be switched off without restarting the monitor.
type notifier struct {
	desktop notify.Sink
	dial    func(url, subject string) (natsSink, error)

	mu      sync.Mutex
	enabled bool
	nats    natsSink
	url     string
	subject string
}

func newNotifier(desktop notify.Sink, dial func(url, subject string) (natsSink, error)) *notifier {
	return &notifier{desktop: desktop, dial: dial}
}

// Notify implements notify.Sink.
func (n *notifier) Notify(title, body string) error {
	n.mu.Lock()
	enabled := n.enabled
	sinks := notify.Multi{n.desktop}
	if n.nats != nil {
		sinks = append(sinks, n.nats)
	}
	n.mu.Unlock()

	if !enabled {
		return nil
	}
	return sinks.Notify(title, body)
}

// configure applies notification settings, reconnecting to NATS when the
// server or subject changed.
func (n *notifier) configure(cfg models.NotificationsConfig) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.enabled = cfg.Enabled
	// A failed dial is retried on the next configure even when nothing changed.
	connected := n.url == "" || n.nats != nil
	if cfg.NATSURL == n.url && cfg.NATSSubject == n.subject && connected {
		return
	}

	if n.nats != nil {
		n.nats.Close()
		n.nats = nil
	}
	n.url = cfg.NATSURL
	n.subject = cfg.NATSSubject
	if n.url == "" {
		return
	}

	conn, err := n.dial(n.url, n.subject)
	if err != nil {
		log.Printf("[notify] NATS publishing disabled: %v", err)
		return
	}
	n.nats = conn
	log.Printf("[notify] Publishing transitions to %s", n.url)
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nats != nil {
		n.nats.Close()
		n.nats = nil
	}
}
