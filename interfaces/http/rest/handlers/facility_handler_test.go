package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mab-backend/application/services"
	"mab-backend/domain/facility"
	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/tests/mocks"
)

func newFacilityHandler(store *mocks.MockFacilityStore) *FacilityHandler {
	logger := zap.NewNop()
	return NewFacilityHandler(
		services.NewDirectoryService(store, logger),
		services.NewTreeService(store, logger),
		pkgerrors.NewErrorHandler(logger, false),
		logger,
	)
}

// tenantRequest carries the credentials the middleware would have stored.
func tenantRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := common.WithTenantID(req.Context(), "tenant-1")
	ctx = common.WithCredential(ctx, "key-1")
	return req.WithContext(ctx)
}

func TestFacilityHandler_Buildings_ListsEnrichedRows(t *testing.T) {
	// Arrange
	store := new(mocks.MockFacilityStore)
	store.On("Buildings", mock.Anything, "tenant-1").Return([]facility.Building{
		{TenantID: "tenant-1", SortKey: "B#site-1#bldg-1", Name: "Tower", Address: map[string]interface{}{}},
	}, nil)
	store.On("Sites", mock.Anything, "tenant-1").Return([]facility.Site{
		{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{}},
	}, nil)
	h := newFacilityHandler(store)

	rec := httptest.NewRecorder()

	// Act
	h.Buildings(rec, tenantRequest("/buildings"))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "bldg-1", rows[0]["bldgid"])
	assert.Equal(t, "HQ", rows[0]["siteName"])
}

func TestFacilityHandler_Segments_EmptyMirrorGetsDiagnostic(t *testing.T) {
	// Arrange
	store := new(mocks.MockFacilityStore)
	store.On("Segments", mock.Anything, "tenant-1").Return([]facility.Segment{}, nil)
	h := newFacilityHandler(store)

	rec := httptest.NewRecorder()

	// Act
	h.Segments(rec, tenantRequest("/segments"))

	// Assert
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tenant-1", body["tenant_id"])
	assert.Equal(t, true, body["api_key_present"])
	assert.NotEmpty(t, body["error"])
}

func TestFacilityHandler_Tree_MissingTenantIsTyped400(t *testing.T) {
	// Arrange
	store := new(mocks.MockFacilityStore)
	h := newFacilityHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/tree", nil)
	rec := httptest.NewRecorder()

	// Act
	h.Tree(rec, req)

	// Assert
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, string(pkgerrors.ErrorTypeMissingCredential), body["type"])
	store.AssertNotCalled(t, "Sites", mock.Anything, mock.Anything)
}
