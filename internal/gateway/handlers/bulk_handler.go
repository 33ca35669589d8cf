package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"acadsys/internal/bulk"
	"acadsys/internal/gateway/util"
)

// maxImportBytes caps CSV upload size at 8 MiB
const maxImportBytes = 8 << 20

// BulkHandler exposes CSV batch imports over REST. Uploads are raw CSV
// request bodies, not multipart forms.
type BulkHandler struct {
	Reconciler *bulk.Reconciler
}

func readImportBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Failed to read request body")
		return "", false
	}
	return string(body), true
}

// ImportStudents handles POST /admin/import/students
func (h *BulkHandler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	data, ok := readImportBody(w, r)
	if !ok {
		return
	}

	result, err := h.Reconciler.ImportStudents(r.Context(), data)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// ImportGrades handles POST /grades/import/{grade_item_id}
func (h *BulkHandler) ImportGrades(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
		return
	}

	gradeItemID := chi.URLParam(r, "grade_item_id")

	data, ok := readImportBody(w, r)
	if !ok {
		return
	}

	result, err := h.Reconciler.ImportGrades(r.Context(), identity.UserID, gradeItemID, data)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}
