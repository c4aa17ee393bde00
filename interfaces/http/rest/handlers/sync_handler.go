package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"mab-backend/application/services"
	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
)

// SyncHandler triggers a full mirror refresh for the calling tenant.
type SyncHandler struct {
	sync   *services.SyncService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync *services.SyncService, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		sync:   sync,
		errors: errors,
		logger: logger,
	}
}

// Run handles POST /sync using the request's own credentials.
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	cred := requestCredential(r)

	result, err := h.sync.Run(r.Context(), cred)
	if err != nil {
		if pkgerrors.IsMissingCredential(err) || pkgerrors.IsValidation(err) {
			h.errors.Handle(w, r, err)
			return
		}
		h.logger.Error("Tenant sync request failed", zap.String("tenantID", cred.TenantID), zap.Error(err))
		common.RespondDiagnostic(w, r, err, cred.TenantID, cred.APIKey != "")
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
