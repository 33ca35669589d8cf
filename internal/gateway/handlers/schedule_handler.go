package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"acadsys/internal/gateway/util"
	"acadsys/internal/schedule"
)

// ScheduleHandler exposes classroom timetable booking over REST.
type ScheduleHandler struct {
	Schedule *schedule.Service
}

// CreateSchedule handles POST /schedules
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var reqBody schedule.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		if errors.Is(err, io.EOF) {
			util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Request body is empty")
			return
		}
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request payload")
		return
	}

	created, err := h.Schedule.CreateSchedule(r.Context(), reqBody)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, created)
}

// ListRoomDay handles GET /schedules?classroom_id=...&day_of_week=...
func (h *ScheduleHandler) ListRoomDay(w http.ResponseWriter, r *http.Request) {
	classroomID := r.URL.Query().Get("classroom_id")
	if classroomID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "classroom_id is required")
		return
	}
	dayOfWeek, err := strconv.Atoi(r.URL.Query().Get("day_of_week"))
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "day_of_week must be an integer")
		return
	}

	schedules, err := h.Schedule.ListRoomDay(r.Context(), classroomID, dayOfWeek)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, schedules)
}

// DeleteSchedule handles DELETE /schedules/{id}
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Schedule.DeleteSchedule(r.Context(), id); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Schedule deleted",
	})
}
