package timesheet_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"timesheet-service/internal/httputil"
	"timesheet-service/internal/logger"
	"timesheet-service/internal/metrics"
	"timesheet-service/internal/timesheet"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnv struct {
	server *httptest.Server
	repo   timesheet.Repository
}

func setupAPI(t *testing.T, repo timesheet.Repository) *apiEnv {
	t.Helper()

	service := timesheet.NewService(repo, nil, metrics.NewMock(), logger.Discard())
	handler := timesheet.NewHandler(service, logger.Discard())

	router := chi.NewRouter()
	router.NotFound(httputil.NotFound)
	router.MethodNotAllowed(httputil.MethodNotAllowed)
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &apiEnv{server: server, repo: repo}
}

func (e *apiEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func randomTimesheet() *timesheet.Timesheet {
	return &timesheet.Timesheet{
		ProjectID: rand.Int64N(5) + 1,
		CreatedAt: datePtr(timesheet.Today()),
		Minutes:   rand.IntN(900) + 100,
	}
}

// runAPITests exercises the HTTP surface against whatever store repo wraps.
func runAPITests(t *testing.T, env *apiEnv, cleanup func(t *testing.T)) {
	ctx := context.Background()

	t.Run("GetByIDNotFound", func(t *testing.T) {
		cleanup(t)

		resp := env.do(t, http.MethodGet, "/timesheets/-2", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/timesheets/99999", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		errBody := decodeBody[httputil.ErrorResponse](t, resp)
		assert.Equal(t, "Timesheet not found", errBody.Error)
	})

	t.Run("GetByID", func(t *testing.T) {
		cleanup(t)

		expected, err := env.repo.Save(ctx, randomTimesheet())
		require.NoError(t, err)

		resp := env.do(t, http.MethodGet, fmt.Sprintf("/timesheets/%d", expected.ID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		actual := decodeBody[timesheet.Timesheet](t, resp)
		assert.Equal(t, expected.ID, actual.ID)
		assert.Equal(t, expected.ProjectID, actual.ProjectID)
		assert.Equal(t, expected.Minutes, actual.Minutes)
		require.NotNil(t, actual.CreatedAt)
		assert.Equal(t, expected.CreatedAt.String(), actual.CreatedAt.String())
	})

	t.Run("GetAll", func(t *testing.T) {
		cleanup(t)

		_, err := env.repo.Save(ctx, randomTimesheet())
		require.NoError(t, err)
		_, err = env.repo.Save(ctx, randomTimesheet())
		require.NoError(t, err)

		resp := env.do(t, http.MethodGet, "/timesheets", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		all := decodeBody[[]timesheet.Timesheet](t, resp)
		assert.Len(t, all, 2)
		assert.Less(t, all[0].ID, all[1].ID)
	})

	t.Run("GetAllEmpty", func(t *testing.T) {
		cleanup(t)

		resp := env.do(t, http.MethodGet, "/timesheets", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		all := decodeBody[[]timesheet.Timesheet](t, resp)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("Create", func(t *testing.T) {
		cleanup(t)

		toCreate := randomTimesheet()
		resp := env.do(t, http.MethodPost, "/timesheets", toCreate)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		created := decodeBody[timesheet.Timesheet](t, resp)
		assert.NotZero(t, created.ID)
		assert.Equal(t, toCreate.ProjectID, created.ProjectID)
		assert.Equal(t, toCreate.Minutes, created.Minutes)

		exists, err := env.repo.ExistsByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("CreateWithOnlyID", func(t *testing.T) {
		cleanup(t)

		resp := env.do(t, http.MethodPost, "/timesheets", map[string]any{"id": 1500})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		created := decodeBody[timesheet.Timesheet](t, resp)
		assert.Equal(t, int64(1500), created.ID)
		assert.Nil(t, created.CreatedAt)
	})

	t.Run("CreateInvalid", func(t *testing.T) {
		cleanup(t)

		resp := env.do(t, http.MethodPost, "/timesheets", map[string]any{"minutes": -5})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/timesheets", strings.NewReader("{not json"))
		require.NoError(t, err)
		raw, err := env.server.Client().Do(req)
		require.NoError(t, err)
		defer raw.Body.Close()
		assert.Equal(t, http.StatusBadRequest, raw.StatusCode)

		resp = env.do(t, http.MethodPost, "/timesheets", map[string]any{"createdAt": "yesterday"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		cleanup(t)

		toDelete, err := env.repo.Save(ctx, &timesheet.Timesheet{ID: 2000})
		require.NoError(t, err)

		resp := env.do(t, http.MethodDelete, fmt.Sprintf("/timesheets/%d", toDelete.ID), nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		exists, err := env.repo.ExistsByID(ctx, toDelete.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		cleanup(t)

		resp := env.do(t, http.MethodDelete, "/timesheets/2001", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Update", func(t *testing.T) {
		cleanup(t)

		toUpdate, err := env.repo.Save(ctx, &timesheet.Timesheet{
			ProjectID: rand.Int64N(5) + 1,
			Minutes:   rand.IntN(900) + 100,
		})
		require.NoError(t, err)
		toUpdate.Minutes = 2000

		resp := env.do(t, http.MethodPut, fmt.Sprintf("/timesheets/%d", toUpdate.ID), toUpdate)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		updated := decodeBody[timesheet.Timesheet](t, resp)
		assert.Equal(t, toUpdate.ID, updated.ID)
		assert.Equal(t, toUpdate.ProjectID, updated.ProjectID)
		assert.Equal(t, 2000, updated.Minutes)

		stored, err := env.repo.FindByID(ctx, toUpdate.ID)
		require.NoError(t, err)
		assert.Equal(t, 2000, stored.Minutes)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		cleanup(t)

		resp := env.do(t, http.MethodPut, "/timesheets/31337", map[string]any{"minutes": 10})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		exists, err := env.repo.ExistsByID(ctx, 31337)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("BadID", func(t *testing.T) {
		cleanup(t)

		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			resp := env.do(t, method, "/timesheets/abc", map[string]any{})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, method)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/projects/999", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/timesheets/1", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestTimesheetAPI_SQLite(t *testing.T) {
	database := newSQLiteDB(t)
	repo := timesheet.NewRepository(database, metrics.NewMock())
	env := setupAPI(t, repo)

	runAPITests(t, env, func(t *testing.T) {
		_, err := database.NewDelete().Model((*timesheet.Timesheet)(nil)).Where("1 = 1").Exec(context.Background())
		require.NoError(t, err)
	})
}
