package timesheet

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"timesheet-service/internal/events"
	"timesheet-service/internal/metrics"
)

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrInvalidInput      = errors.New("invalid input")
)

type Service interface {
	CreateTimesheet(ctx context.Context, t *Timesheet) (*Timesheet, error)
	GetAllTimesheets(ctx context.Context) ([]Timesheet, error)
	GetTimesheetByID(ctx context.Context, id int64) (*Timesheet, error)
	UpdateTimesheet(ctx context.Context, id int64, t *Timesheet) (*Timesheet, error)
	DeleteTimesheet(ctx context.Context, id int64) error
}

type service struct {
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *service) CreateTimesheet(ctx context.Context, t *Timesheet) (*Timesheet, error) {
	if t.ID < 0 {
		return nil, ErrInvalidInput
	}

	created, err := s.repo.Save(ctx, t)
	if err != nil {
		return nil, err
	}

	s.metrics.Timesheets.RecordTimesheetCreated(ctx, created.ProjectID, created.Minutes)
	s.publish(ctx, events.TypeTimesheetCreated, created.ID, created)
	return created, nil
}

func (s *service) GetAllTimesheets(ctx context.Context) ([]Timesheet, error) {
	timesheets, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.Timesheets.RecordTimesheetsListViewed(ctx)
	return timesheets, nil
}

// GetTimesheetByID treats ids that can never exist as missing rather than invalid.
func (s *service) GetTimesheetByID(ctx context.Context, id int64) (*Timesheet, error) {
	if id <= 0 {
		return nil, ErrTimesheetNotFound
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.Timesheets.RecordTimesheetViewed(ctx)
	return t, nil
}

func (s *service) UpdateTimesheet(ctx context.Context, id int64, t *Timesheet) (*Timesheet, error) {
	if id <= 0 {
		return nil, ErrTimesheetNotFound
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTimesheetNotFound
	}

	t.ID = id
	updated, err := s.repo.Save(ctx, t)
	if err != nil {
		return nil, err
	}

	s.metrics.Timesheets.RecordTimesheetUpdated(ctx)
	s.publish(ctx, events.TypeTimesheetUpdated, updated.ID, updated)
	return updated, nil
}

func (s *service) DeleteTimesheet(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrTimesheetNotFound
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.metrics.Timesheets.RecordTimesheetDeleted(ctx)
	s.publish(ctx, events.TypeTimesheetDeleted, id, nil)
	return nil
}

// publish never fails the caller; the row is already committed.
func (s *service) publish(ctx context.Context, eventType string, id int64, t *Timesheet) {
	event := events.Event{
		Type:       eventType,
		Key:        strconv.FormatInt(id, 10),
		OccurredAt: time.Now().UTC(),
	}
	if t != nil {
		event.Data = t
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish timesheet event", "type", eventType, "id", id, "error", err)
	}
}
