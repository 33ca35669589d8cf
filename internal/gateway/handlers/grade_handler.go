package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"acadsys/internal/gateway/util"
	"acadsys/internal/grading"
)

// GradeHandler exposes the grade ledger over REST.
type GradeHandler struct {
	Ledger *grading.Ledger
}

// RESTCreateGradeItemRequest mirrors the expected JSON input for POST /grade-items.
// Weight is kept raw so both numeric and string forms reach weight parsing,
// where a bad value fails as an invalid weight instead of a decode error.
type RESTCreateGradeItemRequest struct {
	CourseID string          `json:"course_id"`
	Name     string          `json:"name"`
	Weight   json.RawMessage `json:"weight"`
}

// RESTUpdateWeightRequest mirrors the expected JSON input for weight updates
type RESTUpdateWeightRequest struct {
	Weight json.RawMessage `json:"weight"`
}

// RESTRecordScoreRequest mirrors the expected JSON input for POST /grades
type RESTRecordScoreRequest struct {
	EnrollmentID string  `json:"enrollment_id"`
	GradeItemID  string  `json:"grade_item_id"`
	Score        float64 `json:"score"`
}

// rawWeightString strips JSON string quoting so "0.4" and 0.4 are equivalent
func rawWeightString(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

// CreateGradeItem handles POST /grade-items
func (h *GradeHandler) CreateGradeItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
		return
	}

	var reqBody RESTCreateGradeItemRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		if errors.Is(err, io.EOF) {
			util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Request body is empty")
			return
		}
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request payload")
		return
	}

	item, err := h.Ledger.CreateGradeItem(r.Context(), reqBody.CourseID, reqBody.Name, rawWeightString(reqBody.Weight), identity.UserID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, item)
}

// UpdateGradeItemWeight handles PUT /grade-items/{id}/weight
func (h *GradeHandler) UpdateGradeItemWeight(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	var reqBody RESTUpdateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request payload")
		return
	}

	item, err := h.Ledger.UpdateGradeItemWeight(r.Context(), itemID, rawWeightString(reqBody.Weight))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, item)
}

// DeleteGradeItem handles DELETE /grade-items/{id}
func (h *GradeHandler) DeleteGradeItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	if err := h.Ledger.DeleteGradeItem(r.Context(), itemID); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Grade item deleted",
	})
}

// RecordScore handles POST /grades
func (h *GradeHandler) RecordScore(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
		return
	}

	var reqBody RESTRecordScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request payload")
		return
	}

	grade, err := h.Ledger.RecordScore(r.Context(), reqBody.EnrollmentID, reqBody.GradeItemID, reqBody.Score, identity.UserID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, grade)
}

// PublishGrades handles POST /grades/publish/{course_id}
func (h *GradeHandler) PublishGrades(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
		return
	}

	courseID := chi.URLParam(r, "course_id")

	count, err := h.Ledger.PublishGrades(r.Context(), courseID, identity.UserID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"published": count,
	})
}

// SemesterSummary handles GET /students/{student_id}/summary?semester=...
func (h *GradeHandler) SemesterSummary(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	semester := r.URL.Query().Get("semester")

	summary, err := h.Ledger.SemesterSummary(r.Context(), studentID, semester)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, summary)
}

// CourseStats handles GET /grades/stats/{course_id}
func (h *GradeHandler) CourseStats(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course_id")

	result, err := h.Ledger.CourseStats(r.Context(), courseID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}
