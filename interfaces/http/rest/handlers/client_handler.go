package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/application/services"
	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
)

// ClientHandler serves the clients awaiting MAC authorization and the
// PATCH that approves or denies them.
type ClientHandler struct {
	clients *services.ClientService
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients *services.ClientService, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clients: clients,
		errors:  errors,
		logger:  logger,
	}
}

// List handles GET /clients. An empty list is a valid answer.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	cred := requestCredential(r)

	clients, err := h.clients.List(r.Context(), cred)
	if err != nil {
		if pkgerrors.IsMissingCredential(err) || pkgerrors.IsValidation(err) {
			h.errors.Handle(w, r, err)
			return
		}
		h.logger.Error("Client list failed", zap.String("tenantID", cred.TenantID), zap.Error(err))
		common.RespondDiagnostic(w, r, err, cred.TenantID, cred.APIKey != "")
		return
	}

	common.RespondJSON(w, http.StatusOK, clients)
}

// UpdateMACAuth handles PATCH /clients. The upstream's answer is
// relayed with its own status code, including rejections.
func (h *ClientHandler) UpdateMACAuth(w http.ResponseWriter, r *http.Request) {
	cred := requestCredential(r)

	var req services.MACAuthRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid JSON in request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.clients.UpdateMACAuth(r.Context(), cred, req)
	if err != nil {
		common.RespondJSON(w, pkgerrors.StatusOf(err), map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	common.RespondJSON(w, result.Status, result.Body)
}

// requestCredential assembles the upstream credential stored by the
// credentials middleware.
func requestCredential(r *http.Request) ports.Credential {
	tenantID, _ := common.GetTenantID(r.Context())
	apiKey, _ := common.GetCredential(r.Context())
	return ports.Credential{TenantID: tenantID, APIKey: apiKey}
}
