package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timesheet-service/internal/config"
	"timesheet-service/internal/metrics"
)

const (
	TypeTimesheetCreated = "timesheet.created"
	TypeTimesheetUpdated = "timesheet.updated"
	TypeTimesheetDeleted = "timesheet.deleted"
)

// Event is the JSON envelope sent to the broker.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	// Ping reports whether the broker is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// New builds the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, m *metrics.Metrics, logger *slog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case config.EventsNATS:
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, m, logger)
	case config.EventsKafka:
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, m, logger)
	case config.EventsNone, "":
		logger.Info("event publishing disabled")
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Ping(context.Context) error           { return nil }
func (Noop) Close() error                         { return nil }
