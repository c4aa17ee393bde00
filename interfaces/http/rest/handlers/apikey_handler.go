package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mab-backend/application/services"
	"mab-backend/pkg/auth"
	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
)

// maxBodyBytes caps request bodies on the write endpoints.
const maxBodyBytes = 1 << 20

// APIKeyHandler serves the per-user API key CRUD. Response envelopes
// match what the portal already consumes: `{apiKeys: [...]}` on list,
// the bare item on create/update, `{message}` on delete, and a flat
// `{error}` on failure.
type APIKeyHandler struct {
	keys   *services.APIKeyService
	logger *zap.Logger
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(keys *services.APIKeyService, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keys:   keys,
		logger: logger,
	}
}

// List handles GET /apikeys
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.ResolveUserID(r, r.URL.Query().Get("userId"))
	if userID == "" {
		respondMissingUser(w)
		return
	}

	keys, err := h.keys.List(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"apiKeys": keys})
}

// Create handles POST /apikeys
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateKeyRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		respondKeyError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	userID := auth.ResolveUserID(r, req.UserID)
	if userID == "" {
		respondMissingUser(w)
		return
	}

	key, err := h.keys.Create(r.Context(), userID, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, key)
}

// Update handles PUT /apikeys
func (h *APIKeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateKeyRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		respondKeyError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	userID := auth.ResolveUserID(r, req.UserID)
	if userID == "" {
		respondMissingUser(w)
		return
	}

	key, err := h.keys.Update(r.Context(), userID, req)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			respondKeyError(w, http.StatusNotFound, "API key not found or does not belong to the user")
			return
		}
		h.respondError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, key)
}

// Delete handles DELETE /apikeys. The key id is accepted as a query
// param, a path param, or a body field, in that order.
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.ResolveUserID(r, r.URL.Query().Get("userId"))
	if userID == "" {
		respondMissingUser(w)
		return
	}

	keyID := r.URL.Query().Get("keyId")
	if keyID == "" {
		keyID = chi.URLParam(r, "keyID")
	}
	if keyID == "" {
		var body struct {
			KeyID string `json:"keyId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			keyID = body.KeyID
		}
	}
	if keyID == "" {
		respondKeyError(w, http.StatusBadRequest, "Key ID is required")
		return
	}

	if err := h.keys.Delete(r.Context(), userID, keyID); err != nil {
		h.respondError(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusOK, "API key deleted successfully")
}

// respondError maps service failures onto the flat error envelope.
func (h *APIKeyHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := pkgerrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("API key operation failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	respondKeyError(w, status, err.Error())
}

func respondKeyError(w http.ResponseWriter, status int, message string) {
	common.RespondJSON(w, status, map[string]string{"error": message})
}

func respondMissingUser(w http.ResponseWriter) {
	common.RespondJSON(w, http.StatusBadRequest, map[string]string{
		"error":   "User ID is required",
		"details": "Authentication may have failed or the authorization header may be missing",
	})
}
