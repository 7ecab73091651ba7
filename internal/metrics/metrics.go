package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Runtime    *RuntimeMetrics
	Database   *DatabaseMetrics
	Messaging  *MessagingMetrics
	Health     *HealthMetrics
	Grpc       *GrpcMetrics
	Timesheets *TimesheetMetrics
	meter      metric.Meter
}

func New(ctx context.Context, meter metric.Meter, logger *slog.Logger) (*Metrics, error) {
	runtime, err := NewRuntimeMetrics(ctx, meter)
	if err != nil {
		return nil, err
	}

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	health, err := NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	grpcMetrics, err := NewGrpcMetrics(meter)
	if err != nil {
		return nil, err
	}

	timesheets, err := NewTimesheetMetrics(meter)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return &Metrics{
		Runtime:    runtime,
		Database:   database,
		Messaging:  messaging,
		Health:     health,
		Grpc:       grpcMetrics,
		Timesheets: timesheets,
		meter:      meter,
	}, nil
}

// Meter returns the meter the collectors were registered on.
func (m *Metrics) Meter() metric.Meter {
	return m.meter
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Runtime:    &RuntimeMetrics{},
		Database:   &DatabaseMetrics{},
		Messaging:  &MessagingMetrics{},
		Health:     &HealthMetrics{dependencies: map[string]*DependencyStatus{}},
		Grpc:       &GrpcMetrics{},
		Timesheets: &TimesheetMetrics{},
	}
}
