package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject transition events are published on.
const DefaultSubject = "studiobar.transitions"

// TransitionEvent is the JSON payload published for each notification.
type TransitionEvent struct {
	Event string `json:"event"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Time  int64  `json:"time"`
}

// publisher is the subset of *nats.Conn used by NATS.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes notifications as TransitionEvents on a subject.
type NATS struct {
	conn    publisher
	nc      *nats.Conn
	subject string
	now     func() time.Time
}

// DialNATS connects to url and returns a sink publishing on subject.
func DialNATS(url, subject string) (*NATS, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	opts := []nats.Option{
		nats.Name("studiobar"),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Printf("[notify] NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[notify] NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATS{conn: nc, nc: nc, subject: subject, now: time.Now}, nil
}

// Notify publishes a TransitionEvent.
func (n *NATS) Notify(title, body string) error {
	payload, err := json.Marshal(TransitionEvent{
		Event: "studio.transition",
		Title: title,
		Body:  body,
		Time:  n.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode transition event: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (n *NATS) Close() {
	if n.nc != nil {
		_ = n.nc.Drain()
		n.nc.Close()
	}
}
