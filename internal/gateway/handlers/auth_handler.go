package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"acadsys/internal/auth"
	"acadsys/internal/gateway/util"
)

// AuthHandler exposes the auth service over REST.
type AuthHandler struct {
	Auth *auth.Service
}

// RESTLoginRequest mirrors the expected JSON input for /auth/login
type RESTLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RESTChangePasswordRequest mirrors the expected JSON input for /auth/change-password
type RESTChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var reqBody RESTLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		if errors.Is(err, io.EOF) {
			util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Request body is empty")
			return
		}
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request payload")
		return
	}

	result, err := h.Auth.Login(r.Context(), reqBody.Username, reqBody.Password)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := util.ExtractToken(r)
	if err != nil {
		// Revoking a token that was never presented is still a successful
		// logout from the client's perspective.
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Logged out successfully",
		})
		return
	}

	h.Auth.Logout(token)
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// ValidateToken handles GET /auth/validate
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token, err := util.ExtractToken(r)
	if err != nil {
		util.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"valid":   false,
			"message": "Authorization token missing or invalid format",
		})
		return
	}

	identity, err := h.Auth.Validate(token)
	if err != nil {
		util.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"valid":   false,
			"message": "Invalid or expired session token",
		})
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"valid":   true,
		"user":    identity,
	})
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token required")
		return
	}

	var reqBody RESTChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		if errors.Is(err, io.EOF) {
			util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Request body is empty")
			return
		}
		util.WriteJSONError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid request payload")
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), identity.UserID, reqBody.OldPassword, reqBody.NewPassword); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password changed successfully",
	})
}
