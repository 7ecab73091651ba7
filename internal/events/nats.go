package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"timesheet-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

var ErrNotConnected = errors.New("broker not connected")

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewNATSPublisher(url, subject string, m *metrics.Metrics, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("timesheet-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
			m.Messaging.RecordConnectionChange(context.Background(), -1)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
			m.Messaging.RecordConnectionChange(context.Background(), 1)
		}),
	)
	if err != nil {
		return nil, err
	}
	m.Messaging.RecordConnectionChange(context.Background(), 1)

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "error", err)
		return err
	}

	err = p.conn.Publish(p.subject, payload)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event to NATS", "type", event.Type, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event published to NATS", "subject", p.subject, "type", event.Type, "key", event.Key)
	return nil
}

func (p *NATSPublisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return ErrNotConnected
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
