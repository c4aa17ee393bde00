// Package handlers holds the REST handlers. They decode requests,
// delegate to the application services, and translate errors into the
// portal's response shapes.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"mab-backend/application/services"
	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
)

// FacilityHandler serves the mirrored facility reads: the four flat
// listings and the tree.
type FacilityHandler struct {
	directory *services.DirectoryService
	tree      *services.TreeService
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(
	directory *services.DirectoryService,
	tree *services.TreeService,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *FacilityHandler {
	return &FacilityHandler{
		directory: directory,
		tree:      tree,
		errors:    errors,
		logger:    logger,
	}
}

// Sites handles GET /sites
func (h *FacilityHandler) Sites(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := common.GetTenantID(r.Context())
	listings, err := h.directory.Sites(r.Context(), tenantID)
	h.respond(w, r, tenantID, listings, err)
}

// Buildings handles GET /buildings
func (h *FacilityHandler) Buildings(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := common.GetTenantID(r.Context())
	listings, err := h.directory.Buildings(r.Context(), tenantID)
	h.respond(w, r, tenantID, listings, err)
}

// Floors handles GET /floors
func (h *FacilityHandler) Floors(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := common.GetTenantID(r.Context())
	listings, err := h.directory.Floors(r.Context(), tenantID)
	h.respond(w, r, tenantID, listings, err)
}

// Segments handles GET /segments
func (h *FacilityHandler) Segments(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := common.GetTenantID(r.Context())
	listings, err := h.directory.Segments(r.Context(), tenantID)
	h.respond(w, r, tenantID, listings, err)
}

// Tree handles GET /tree
func (h *FacilityHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := common.GetTenantID(r.Context())
	tree, err := h.tree.Tree(r.Context(), tenantID)
	h.respond(w, r, tenantID, tree, err)
}

// respond writes the payload, or maps the failure: missing credentials
// and bad input are plain 400s, anything else gets the verbose
// diagnostic body the portal's operators rely on.
func (h *FacilityHandler) respond(w http.ResponseWriter, r *http.Request, tenantID string, payload interface{}, err error) {
	if err == nil {
		common.RespondJSON(w, http.StatusOK, payload)
		return
	}

	if pkgerrors.IsMissingCredential(err) || pkgerrors.IsValidation(err) {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Error("Facility read failed",
		zap.String("path", r.URL.Path),
		zap.String("tenantID", tenantID),
		zap.Error(err),
	)
	_, keyPresent := common.GetCredential(r.Context())
	common.RespondDiagnostic(w, r, err, tenantID, keyPresent)
}
