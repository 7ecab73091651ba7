package timesheet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"timesheet-service/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/timesheets", func(r chi.Router) {
		r.Post("/", h.CreateTimesheet)
		r.Get("/", h.GetAllTimesheets)
		r.Get("/{id}", h.GetTimesheet)
		r.Put("/{id}", h.UpdateTimesheet)
		r.Delete("/{id}", h.DeleteTimesheet)
	})
}

func (h *Handler) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	var timesheet Timesheet
	if !h.decode(w, r, &timesheet) {
		return
	}

	h.logger.InfoContext(r.Context(), "creating timesheet", "project_id", timesheet.ProjectID)
	created, err := h.service.CreateTimesheet(r.Context(), &timesheet)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllTimesheets(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all timesheets")

	timesheets, err := h.service.GetAllTimesheets(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, timesheets)
}

func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching timesheet by ID", "id", id)
	timesheet, err := h.service.GetTimesheetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, timesheet)
}

func (h *Handler) UpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var timesheet Timesheet
	if !h.decode(w, r, &timesheet) {
		return
	}

	h.logger.InfoContext(r.Context(), "updating timesheet", "id", id)
	updated, err := h.service.UpdateTimesheet(r.Context(), id, &timesheet)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "deleting timesheet", "id", id)
	if err := h.service.DeleteTimesheet(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid timesheet ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, timesheet *Timesheet) bool {
	if err := json.NewDecoder(r.Body).Decode(timesheet); err != nil {
		h.logger.InfoContext(r.Context(), "invalid request body", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	if err := h.validate.Struct(timesheet); err != nil {
		h.logger.InfoContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrTimesheetNotFound) {
		h.logger.InfoContext(r.Context(), "timesheet not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Timesheet not found")
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		h.logger.InfoContext(r.Context(), "invalid input")
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
