package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event is the envelope published for every domain event.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt string      `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Publisher sends JSON events to NATS subjects under a common prefix.
type Publisher struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

// NewNATSPublisher connects to url and returns a publisher.
func NewNATSPublisher(url, prefix string, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("eduflow-api"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("nats publisher initialised", zap.String("url", url), zap.String("prefix", prefix))
	return newPublisher(nc, prefix, logger), nil
}

func newPublisher(c conn, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{conn: c, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// Publish marshals event and sends it to <prefix>.<event.Type>.
func (p *Publisher) Publish(_ context.Context, event Event) error {
	if p == nil || p.conn == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("type", event.Type), zap.Error(err))
		return err
	}
	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, body); err != nil {
		p.logger.Error("failed to publish event", zap.String("subject", subject), zap.Error(err))
		return err
	}
	p.logger.Debug("event published", zap.String("subject", subject))
	return nil
}

// Subject returns the fully qualified subject for an event type.
func (p *Publisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// Close drains the underlying connection.
func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	p.conn.Close()
	return nil
}
