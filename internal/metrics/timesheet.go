package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type TimesheetMetrics struct {
	timesheetsCreated    metric.Int64Counter
	timesheetsUpdated    metric.Int64Counter
	timesheetsDeleted    metric.Int64Counter
	timesheetsViewed     metric.Int64Counter
	timesheetsListViewed metric.Int64Counter
	minutesLogged        metric.Int64Counter
}

func NewTimesheetMetrics(meter metric.Meter) (*TimesheetMetrics, error) {
	m := &TimesheetMetrics{}

	var err error

	m.timesheetsCreated, err = meter.Int64Counter(
		"timesheet_service.timesheets.created",
		metric.WithDescription("Total number of timesheets created"),
		metric.WithUnit("{timesheet}"),
	)
	if err != nil {
		return nil, err
	}

	m.timesheetsUpdated, err = meter.Int64Counter(
		"timesheet_service.timesheets.updated",
		metric.WithDescription("Total number of timesheets updated"),
		metric.WithUnit("{timesheet}"),
	)
	if err != nil {
		return nil, err
	}

	m.timesheetsDeleted, err = meter.Int64Counter(
		"timesheet_service.timesheets.deleted",
		metric.WithDescription("Total number of timesheets deleted"),
		metric.WithUnit("{timesheet}"),
	)
	if err != nil {
		return nil, err
	}

	m.timesheetsViewed, err = meter.Int64Counter(
		"timesheet_service.timesheets.viewed",
		metric.WithDescription("Total number of timesheets viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.timesheetsListViewed, err = meter.Int64Counter(
		"timesheet_service.timesheets.list_viewed",
		metric.WithDescription("Total number of times the timesheet list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.minutesLogged, err = meter.Int64Counter(
		"timesheet_service.minutes.logged",
		metric.WithDescription("Minutes recorded by newly created timesheets"),
		metric.WithUnit("min"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *TimesheetMetrics) RecordTimesheetCreated(ctx context.Context, projectID int64, minutes int) {
	if m != nil && m.timesheetsCreated != nil {
		m.timesheetsCreated.Add(ctx, 1)
		if minutes > 0 {
			m.minutesLogged.Add(ctx, int64(minutes), metric.WithAttributes(
				attribute.Int64("project_id", projectID),
			))
		}
	}
}

func (m *TimesheetMetrics) RecordTimesheetUpdated(ctx context.Context) {
	if m != nil && m.timesheetsUpdated != nil {
		m.timesheetsUpdated.Add(ctx, 1)
	}
}

func (m *TimesheetMetrics) RecordTimesheetDeleted(ctx context.Context) {
	if m != nil && m.timesheetsDeleted != nil {
		m.timesheetsDeleted.Add(ctx, 1)
	}
}

func (m *TimesheetMetrics) RecordTimesheetViewed(ctx context.Context) {
	if m != nil && m.timesheetsViewed != nil {
		m.timesheetsViewed.Add(ctx, 1)
	}
}

func (m *TimesheetMetrics) RecordTimesheetsListViewed(ctx context.Context) {
	if m != nil && m.timesheetsListViewed != nil {
		m.timesheetsListViewed.Add(ctx, 1)
	}
}
