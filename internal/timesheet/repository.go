package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timesheet-service/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type Repository interface {
	// Save inserts t, or overwrites the stored row when t.ID is already taken.
	// A zero ID is assigned by the database.
	Save(ctx context.Context, t *Timesheet) (*Timesheet, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*Timesheet, error)
	FindAll(ctx context.Context) ([]Timesheet, error)
	DeleteByID(ctx context.Context, id int64) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Save(ctx context.Context, t *Timesheet) (*Timesheet, error) {
	if t.ID == 0 {
		start := time.Now()
		_, err := r.db.NewInsert().Model(t).Returning("*").Exec(ctx)

		r.metrics.Database.RecordQuery(ctx, "insert", "timesheets", time.Since(start), err)

		if err != nil {
			return nil, err
		}
		return t, nil
	}

	start := time.Now()
	_, err := r.db.NewInsert().
		Model(t).
		On("CONFLICT (id) DO UPDATE").
		Set("project_id = EXCLUDED.project_id").
		Set("created_at = EXCLUDED.created_at").
		Set("minutes = EXCLUDED.minutes").
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "upsert", "timesheets", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	if err := r.syncSequence(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// syncSequence moves the Postgres id sequence past client-assigned ids so
// later inserts without an id do not collide with them.
func (r *repository) syncSequence(ctx context.Context) error {
	if r.db.Dialect().Name() != dialect.PG {
		return nil
	}

	start := time.Now()
	_, err := r.db.ExecContext(ctx,
		"SELECT setval(pg_get_serial_sequence('timesheets', 'id'), GREATEST((SELECT MAX(id) FROM timesheets), 1))")

	r.metrics.Database.RecordQuery(ctx, "setval", "timesheets", time.Since(start), err)

	return err
}

func (r *repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Timesheet)(nil)).
		Where("id = ?", id).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "timesheets", time.Since(start), err)

	return exists, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Timesheet, error) {
	start := time.Now()
	timesheet := new(Timesheet)
	err := r.db.NewSelect().Model(timesheet).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "timesheets", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Timesheet, error) {
	start := time.Now()
	timesheets := make([]Timesheet, 0)
	err := r.db.NewSelect().Model(&timesheets).Order("id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "timesheets", time.Since(start), err)

	return timesheets, err
}

func (r *repository) DeleteByID(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Timesheet)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "timesheets", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTimesheetNotFound
	}
	return nil
}
