package timesheet_test

import (
	"context"
	"testing"
	"time"

	"timesheet-service/internal/db"
	"timesheet-service/internal/metrics"
	"timesheet-service/internal/timesheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()

	database, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(database) })

	require.NoError(t, db.RunMigrations(context.Background(), database))
	return database
}

func datePtr(d timesheet.Date) *timesheet.Date {
	return &d
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	database := newSQLiteDB(t)
	repo := timesheet.NewRepository(database, metrics.NewMock())

	cleanup := func(t *testing.T) {
		_, err := database.NewDelete().Model((*timesheet.Timesheet)(nil)).Where("1 = 1").Exec(ctx)
		require.NoError(t, err)
	}

	t.Run("SaveAssignsID", func(t *testing.T) {
		cleanup(t)

		created, err := repo.Save(ctx, &timesheet.Timesheet{
			ProjectID: 3,
			CreatedAt: datePtr(timesheet.NewDate(2024, time.May, 1)),
			Minutes:   500,
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), found.ProjectID)
		assert.Equal(t, 500, found.Minutes)
		require.NotNil(t, found.CreatedAt)
		assert.Equal(t, "2024-05-01", found.CreatedAt.String())
	})

	t.Run("SaveWithClientID", func(t *testing.T) {
		cleanup(t)

		created, err := repo.Save(ctx, &timesheet.Timesheet{ID: 2000, Minutes: 15})
		require.NoError(t, err)
		assert.Equal(t, int64(2000), created.ID)

		exists, err := repo.ExistsByID(ctx, 2000)
		require.NoError(t, err)
		assert.True(t, exists)

		found, err := repo.FindByID(ctx, 2000)
		require.NoError(t, err)
		assert.Nil(t, found.CreatedAt)
	})

	t.Run("SaveOverwritesExisting", func(t *testing.T) {
		cleanup(t)

		_, err := repo.Save(ctx, &timesheet.Timesheet{ID: 7, ProjectID: 1, Minutes: 60})
		require.NoError(t, err)

		updated, err := repo.Save(ctx, &timesheet.Timesheet{ID: 7, ProjectID: 2, Minutes: 2000})
		require.NoError(t, err)
		assert.Equal(t, int64(7), updated.ID)

		found, err := repo.FindByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(2), found.ProjectID)
		assert.Equal(t, 2000, found.Minutes)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("FindByIDNotFound", func(t *testing.T) {
		cleanup(t)

		_, err := repo.FindByID(ctx, 99999)
		assert.ErrorIs(t, err, timesheet.ErrTimesheetNotFound)

		exists, err := repo.ExistsByID(ctx, 99999)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FindAllOrderedByID", func(t *testing.T) {
		cleanup(t)

		empty, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		_, err = repo.Save(ctx, &timesheet.Timesheet{ID: 30, Minutes: 3})
		require.NoError(t, err)
		_, err = repo.Save(ctx, &timesheet.Timesheet{ID: 10, Minutes: 1})
		require.NoError(t, err)
		_, err = repo.Save(ctx, &timesheet.Timesheet{ID: 20, Minutes: 2})
		require.NoError(t, err)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, int64(10), all[0].ID)
		assert.Equal(t, int64(20), all[1].ID)
		assert.Equal(t, int64(30), all[2].ID)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		cleanup(t)

		created, err := repo.Save(ctx, &timesheet.Timesheet{Minutes: 45})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, created.ID))

		exists, err := repo.ExistsByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		assert.ErrorIs(t, repo.DeleteByID(ctx, created.ID), timesheet.ErrTimesheetNotFound)
	})
}
