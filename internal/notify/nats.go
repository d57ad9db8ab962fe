package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS publishes events to a subject for deployments that already run a
// message bus. Connection loss is handled by the client's reconnect logic;
// publishes while disconnected are buffered or fail, and either way the
// error stays inside the notifier contract.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// NewNATS connects to the given server and returns a notifier publishing to
// subject. The connection retries in the background rather than failing
// startup when the bus is down.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("printwatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &NATS{conn: conn, subject: subject}, nil
}

// Notify implements Notifier.
func (n *NATS) Notify(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return nil
}

// Close drains the connection.
func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
