// Package integration exercises the portal backend end to end: real
// router, middleware, handlers, and services over mocked ports.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/application/services"
	"mab-backend/domain/apikey"
	"mab-backend/domain/facility"
	"mab-backend/interfaces/http/rest"
	"mab-backend/interfaces/http/rest/handlers"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/pkg/observability"
	"mab-backend/tests/mocks"
)

// portal wires the full HTTP stack over mocked ports. Each test builds
// its own so mock expectations and breaker state stay isolated.
type portal struct {
	api       *mocks.MockNileAPI
	store     *mocks.MockFacilityStore
	keys      *mocks.MockAPIKeyStore
	publisher *mocks.MockEventPublisher
	handler   http.Handler
}

func newPortal() *portal {
	logger := zap.NewNop()
	metrics := observability.NewMetrics("test", nil, logger)

	api := new(mocks.MockNileAPI)
	store := new(mocks.MockFacilityStore)
	keys := new(mocks.MockAPIKeyStore)
	publisher := new(mocks.MockEventPublisher)

	syncSvc := services.NewSyncService(api, store, publisher, metrics, logger)
	errHandler := pkgerrors.NewErrorHandler(logger, false)

	router := rest.NewRouter(
		handlers.NewFacilityHandler(services.NewDirectoryService(store, logger), services.NewTreeService(store, logger), errHandler, logger),
		handlers.NewClientHandler(services.NewClientService(api, logger), errHandler, logger),
		handlers.NewSyncHandler(syncSvc, errHandler, logger),
		handlers.NewAPIKeyHandler(services.NewAPIKeyService(keys, logger), logger),
		errHandler,
		nil,
		logger,
	)

	return &portal{
		api:       api,
		store:     store,
		keys:      keys,
		publisher: publisher,
		handler:   router.Setup(),
	}
}

func (p *portal) do(method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	return rec
}

func credHeaders() map[string]string {
	return map[string]string{
		"x-tenant-id": "tenant-1",
		"x-api-key":   "key-1",
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFacilityReadFlow(t *testing.T) {
	t.Run("lists stored sites", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.store.On("Sites", mock.Anything, "tenant-1").Return([]facility.Site{
			{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{"city": "Oslo"}},
		}, nil)

		// Act
		rec := p.do(http.MethodGet, "/api/v1/sites", nil, credHeaders())

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		var listing []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
		require.Len(t, listing, 1)
		assert.Equal(t, "tenant-1", listing[0]["tenantid"])
		assert.Equal(t, "site-1", listing[0]["siteid"])
		assert.Equal(t, "HQ", listing[0]["name"])
		p.store.AssertExpectations(t)
	})

	t.Run("missing tenant is a 400", func(t *testing.T) {
		// Arrange
		p := newPortal()

		// Act
		rec := p.do(http.MethodGet, "/api/v1/sites", nil, nil)

		// Assert
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["error"])
		assert.Equal(t, string(pkgerrors.ErrorTypeMissingCredential), body["type"])
		p.store.AssertNotCalled(t, "Sites", mock.Anything, mock.Anything)
	})

	t.Run("store failure returns the diagnostic payload", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.store.On("Sites", mock.Anything, "tenant-1").
			Return(nil, pkgerrors.NewDatabaseError("query", assert.AnError))

		// Act
		rec := p.do(http.MethodGet, "/api/v1/sites?tenantId=ignored", nil, credHeaders())

		// Assert
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "tenant-1", body["tenant_id"])
		assert.Equal(t, true, body["api_key_present"])
		assert.NotEmpty(t, body["error"])

		headers, ok := body["event_headers"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "tenant-1", headers["X-Tenant-Id"])

		params, ok := body["event_query_params"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "ignored", params["tenantId"])
	})

	t.Run("tree assembles the hierarchy", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.store.On("Sites", mock.Anything, "tenant-1").Return([]facility.Site{
			{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{}},
		}, nil)
		p.store.On("Buildings", mock.Anything, "tenant-1").Return([]facility.Building{
			{TenantID: "tenant-1", SortKey: "B#site-1#bldg-1", Name: "Tower", Address: map[string]interface{}{}},
		}, nil)
		p.store.On("Floors", mock.Anything, "tenant-1").Return([]facility.Floor{
			{TenantID: "tenant-1", SortKey: "F#site-1#bldg-1#floor-1", Name: "First", Number: float64(1)},
		}, nil)
		p.store.On("Segments", mock.Anything, "tenant-1").Return([]facility.Segment{
			{TenantID: "tenant-1", SortKey: "SEG#seg-1", ID: "seg-1", Name: "Corp"},
		}, nil)

		// Act
		rec := p.do(http.MethodGet, "/api/v1/tree", nil, credHeaders())

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "tenant-1", body["tenantid"])

		sites, ok := body["sites"].([]interface{})
		require.True(t, ok)
		require.Len(t, sites, 1)

		site := sites[0].(map[string]interface{})
		assert.Equal(t, "site-1", site["siteid"])

		buildings := site["buildings"].([]interface{})
		require.Len(t, buildings, 1)
		floors := buildings[0].(map[string]interface{})["floors"].([]interface{})
		require.Len(t, floors, 1)
		assert.Equal(t, "First", floors[0].(map[string]interface{})["name"])
	})
}

func TestSyncFlow(t *testing.T) {
	t.Run("refreshes all four types", func(t *testing.T) {
		// Arrange
		p := newPortal()
		cred := ports.Credential{TenantID: "tenant-1", APIKey: "key-1"}

		p.api.On("GetSegments", mock.Anything, cred).Return([]map[string]interface{}{
			{"tenantId": "tenant-1", "id": "seg-1", "instanceName": "Corp", "version": "v4"},
		}, nil)
		p.api.On("GetSites", mock.Anything, cred).Return([]map[string]interface{}{
			{"tenantId": "tenant-1", "id": "site-1", "name": "HQ", "address": map[string]interface{}{"city": "Oslo"}},
		}, nil)
		p.api.On("GetBuildings", mock.Anything, cred).Return([]map[string]interface{}{
			{"tenantId": "tenant-1", "siteId": "site-1", "id": "bldg-1", "name": "Tower", "address": map[string]interface{}{}},
		}, nil)
		p.api.On("GetFloors", mock.Anything, cred).Return([]map[string]interface{}{
			{"tenantId": "tenant-1", "siteId": "site-1", "buildingId": "bldg-1", "id": "floor-1", "name": "First", "number": float64(1)},
		}, nil)

		p.store.On("PutSegments", mock.Anything, mock.Anything).Return(nil)
		p.store.On("PutSites", mock.Anything, mock.Anything).Return(nil)
		p.store.On("PutBuildings", mock.Anything, mock.Anything).Return(nil)
		p.store.On("PutFloors", mock.Anything, mock.Anything).Return(nil)
		p.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		// Act
		rec := p.do(http.MethodPost, "/api/v1/sync", nil, credHeaders())

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		expected := fmt.Sprintf(`{"message":%q,"counts":{"segments":1,"sites":1,"buildings":1,"floors":1}}`, services.SyncSuccessMessage)
		assert.JSONEq(t, expected, rec.Body.String())
		p.api.AssertExpectations(t)
		p.store.AssertExpectations(t)
	})

	t.Run("missing credential is a 400", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.api.On("GetSegments", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewMissingCredentialError("x-api-key"))
		p.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		// Act
		rec := p.do(http.MethodPost, "/api/v1/sync", nil, map[string]string{"x-tenant-id": "tenant-1"})

		// Assert
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, string(pkgerrors.ErrorTypeMissingCredential), body["type"])
		p.store.AssertNotCalled(t, "PutSegments", mock.Anything, mock.Anything)
	})
}

func TestClientFlow(t *testing.T) {
	t.Run("lists flattened clients", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.api.On("GetClients", mock.Anything, ports.Credential{TenantID: "tenant-1", APIKey: "key-1"}).
			Return([]map[string]interface{}{
				{"clientConfig": map[string]interface{}{
					"id":         "client-1",
					"macAddress": "aa:bb:cc:dd:ee:ff",
					"tenantId":   "tenant-1",
					"segmentId":  "seg-1",
					"state":      "WAITING_FOR_APPROVAL",
				}},
			}, nil)

		// Act
		rec := p.do(http.MethodGet, "/api/v1/clients", nil, credHeaders())

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		var clients []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
		require.Len(t, clients, 1)
		assert.Equal(t, "aa:bb:cc:dd:ee:ff", clients[0]["macAddress"])
		assert.Equal(t, "Unknown", clients[0]["authenticatedBy"])
	})

	t.Run("forwards MAC authorization upstream", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.api.On("UpdateMACAuth", mock.Anything, "key-1", ports.MACAuthUpdate{
			ClientID:   "client-1",
			MACAddress: "aa:bb:cc:dd:ee:ff",
			SegmentID:  "seg-1",
			State:      "AUTH_OK",
		}).Return(&ports.MACAuthResult{
			Status: http.StatusOK,
			Body:   map[string]interface{}{"status": "AUTH_OK"},
		}, nil)

		payload, _ := json.Marshal(map[string]string{
			"clientId":   "client-1",
			"macAddress": "aa:bb:cc:dd:ee:ff",
			"segmentId":  "seg-1",
			"state":      "AUTH_OK",
		})

		// Act
		rec := p.do(http.MethodPatch, "/api/v1/clients", payload, credHeaders())

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"AUTH_OK"}`, rec.Body.String())
		p.api.AssertExpectations(t)
	})

	t.Run("rejected state never reaches upstream", func(t *testing.T) {
		// Arrange
		p := newPortal()
		payload, _ := json.Marshal(map[string]string{
			"clientId":   "client-1",
			"macAddress": "aa:bb:cc:dd:ee:ff",
			"segmentId":  "seg-1",
			"state":      "AUTH_MAYBE",
		})

		// Act
		rec := p.do(http.MethodPatch, "/api/v1/clients", payload, credHeaders())

		// Assert
		require.Equal(t, http.StatusBadRequest, rec.Code)
		p.api.AssertNotCalled(t, "UpdateMACAuth", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("breaker opens after repeated upstream failures", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.api.On("GetClients", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewUpstreamAuthError("clients", 6))

		// Act: five straight 500s trip the breaker
		for i := 0; i < 5; i++ {
			rec := p.do(http.MethodGet, "/api/v1/clients", nil, credHeaders())
			require.Equal(t, http.StatusInternalServerError, rec.Code)
		}
		rec := p.do(http.MethodGet, "/api/v1/clients", nil, credHeaders())

		// Assert: the sixth answer comes from the breaker, not upstream
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, string(pkgerrors.ErrorTypeUnavailable), body["type"])
		p.api.AssertNumberOfCalls(t, "GetClients", 5)
	})
}

func TestAPIKeyFlow(t *testing.T) {
	userHeaders := map[string]string{"X-User-ID": "user-1"}

	t.Run("lists the caller's keys", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.keys.On("List", mock.Anything, "user-1").Return([]apikey.APIKey{
			{UserID: "user-1", KeyID: "key-9", Name: "portal", Key: "secret", Service: "nile"},
		}, nil)

		// Act
		rec := p.do(http.MethodGet, "/api/v1/apikeys", nil, userHeaders)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		stored, ok := body["apiKeys"].([]interface{})
		require.True(t, ok)
		require.Len(t, stored, 1)
		assert.Equal(t, "key-9", stored[0].(map[string]interface{})["keyId"])
	})

	t.Run("creates a key for the authenticated caller", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.keys.On("Create", mock.Anything, mock.AnythingOfType("*apikey.APIKey")).Return(nil)

		payload, _ := json.Marshal(map[string]string{
			"name":    "portal",
			"key":     "secret",
			"service": "nile",
		})

		// Act
		rec := p.do(http.MethodPost, "/api/v1/apikeys", payload, userHeaders)

		// Assert
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "user-1", body["userId"])
		assert.NotEmpty(t, body["keyId"])
		p.keys.AssertExpectations(t)
	})

	t.Run("unidentified caller is a 400", func(t *testing.T) {
		// Arrange
		p := newPortal()

		// Act
		rec := p.do(http.MethodGet, "/api/v1/apikeys", nil, nil)

		// Assert
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "User ID is required", body["error"])
		p.keys.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("deletes by path parameter", func(t *testing.T) {
		// Arrange
		p := newPortal()
		p.keys.On("Delete", mock.Anything, "user-1", "key-9").Return(nil)

		// Act
		rec := p.do(http.MethodDelete, "/api/v1/apikeys/key-9", nil, userHeaders)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"API key deleted successfully"}`, rec.Body.String())
		p.keys.AssertExpectations(t)
	})
}

func TestRouterBasics(t *testing.T) {
	t.Run("health endpoint", func(t *testing.T) {
		p := newPortal()

		rec := p.do(http.MethodGet, "/health", nil, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("preflight is answered by CORS", func(t *testing.T) {
		p := newPortal()

		rec := p.do(http.MethodOptions, "/api/v1/sites", nil, map[string]string{
			"Origin":                        "https://portal.example.com",
			"Access-Control-Request-Method": "GET",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
