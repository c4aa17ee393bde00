package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/application/services"
	"mab-backend/pkg/common"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/tests/mocks"
)

func newClientHandler(api *mocks.MockNileAPI) *ClientHandler {
	logger := zap.NewNop()
	return NewClientHandler(services.NewClientService(api, logger), pkgerrors.NewErrorHandler(logger, false), logger)
}

func patchRequest(body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/clients", bytes.NewReader(body))
	ctx := common.WithTenantID(req.Context(), "tenant-1")
	ctx = common.WithCredential(ctx, "key-1")
	return req.WithContext(ctx)
}

func TestClientHandler_List_EmptyUpstreamIsEmptyArray(t *testing.T) {
	// Arrange
	api := new(mocks.MockNileAPI)
	api.On("GetClients", mock.Anything, mock.Anything).Return([]map[string]interface{}{}, nil)
	h := newClientHandler(api)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	ctx := common.WithTenantID(req.Context(), "tenant-1")
	ctx = common.WithCredential(ctx, "key-1")
	rec := httptest.NewRecorder()

	// Act
	h.List(rec, req.WithContext(ctx))

	// Assert: no clients is a valid answer, not a NoData failure
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestClientHandler_UpdateMACAuth_RelaysUpstreamRejection(t *testing.T) {
	// Arrange
	api := new(mocks.MockNileAPI)
	api.On("UpdateMACAuth", mock.Anything, "key-1", mock.Anything).Return(&ports.MACAuthResult{
		Status: http.StatusConflict,
		Body:   map[string]interface{}{"error": "client state changed upstream"},
	}, nil)
	h := newClientHandler(api)

	payload, _ := json.Marshal(map[string]string{
		"clientId": "client-1", "macAddress": "aa:bb:cc:dd:ee:ff", "segmentId": "seg-1", "state": "AUTH_DENIED",
	})
	rec := httptest.NewRecorder()

	// Act
	h.UpdateMACAuth(rec, patchRequest(payload))

	// Assert
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"client state changed upstream"}`, rec.Body.String())
}

func TestClientHandler_UpdateMACAuth_InvalidJSONIsRejected(t *testing.T) {
	// Arrange
	api := new(mocks.MockNileAPI)
	h := newClientHandler(api)

	rec := httptest.NewRecorder()

	// Act
	h.UpdateMACAuth(rec, patchRequest([]byte(`{"clientId":`)))

	// Assert
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid JSON in request body", body["error"])
	api.AssertNotCalled(t, "UpdateMACAuth", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientHandler_UpdateMACAuth_TransportErrorIsFlatEnvelope(t *testing.T) {
	// Arrange
	api := new(mocks.MockNileAPI)
	api.On("UpdateMACAuth", mock.Anything, "key-1", mock.Anything).
		Return(nil, pkgerrors.NewUnavailableError("nile API"))
	h := newClientHandler(api)

	payload, _ := json.Marshal(map[string]string{
		"clientId": "client-1", "macAddress": "aa:bb:cc:dd:ee:ff", "segmentId": "seg-1", "state": "AUTH_OK",
	})
	rec := httptest.NewRecorder()

	// Act
	h.UpdateMACAuth(rec, patchRequest(payload))

	// Assert
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}
