// Package notify delivers best-effort error notifications. Delivery failures
// are reported to the caller for logging but must never escalate past it;
// the control loop treats every notifier as fire-and-forget.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/printwatch/internal/config"
)

// Severity classifies an event for the receiving end.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event describes an error condition observed by the daemon.
type Event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Severity Severity  `json:"severity"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
}

// NewEvent builds an Event with a fresh ID and the current time.
func NewEvent(severity Severity, source, message string) Event {
	return Event{
		ID:       uuid.NewString(),
		Time:     time.Now().UTC(),
		Severity: severity,
		Source:   source,
		Message:  message,
	}
}

// Notifier delivers an event to a configured sink.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop is the notifier used when nothing is configured.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) error { return nil }

// Fanout delivers to every configured sink and returns the first failure.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, event Event) error {
	var firstErr error
	for _, n := range f {
		if err := n.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every sink that holds a connection.
func (f Fanout) Close() {
	for _, n := range f {
		if closer, ok := n.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// New assembles the notifier selected by configuration. With nothing
// configured it returns Nop; with both channels configured events go to
// both.
func New(cfg config.NotifyConfig) (Notifier, error) {
	var sinks Fanout

	if cfg.WebhookURL != "" {
		sinks = append(sinks, NewWebhook(cfg.WebhookURL, cfg.WebhookToken))
	}
	if cfg.NATSURL != "" {
		nn, err := NewNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, nn)
	}

	switch len(sinks) {
	case 0:
		return Nop{}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}
