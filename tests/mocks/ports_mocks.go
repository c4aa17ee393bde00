// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mab-backend/application/ports"
	"mab-backend/domain/apikey"
	"mab-backend/domain/events"
	"mab-backend/domain/facility"
)

// MockNileAPI mocks the upstream Nile API port.
type MockNileAPI struct {
	mock.Mock
}

func (m *MockNileAPI) GetSegments(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) != nil {
		return args.Get(0).([]map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNileAPI) GetSites(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) != nil {
		return args.Get(0).([]map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNileAPI) GetBuildings(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) != nil {
		return args.Get(0).([]map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNileAPI) GetFloors(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) != nil {
		return args.Get(0).([]map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNileAPI) GetClients(ctx context.Context, cred ports.Credential) ([]map[string]interface{}, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) != nil {
		return args.Get(0).([]map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNileAPI) UpdateMACAuth(ctx context.Context, apiKey string, update ports.MACAuthUpdate) (*ports.MACAuthResult, error) {
	args := m.Called(ctx, apiKey, update)
	if args.Get(0) != nil {
		return args.Get(0).(*ports.MACAuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFacilityStore mocks the mirrored facility store port.
type MockFacilityStore struct {
	mock.Mock
}

func (m *MockFacilityStore) PutSites(ctx context.Context, sites []facility.Site) error {
	args := m.Called(ctx, sites)
	return args.Error(0)
}

func (m *MockFacilityStore) PutBuildings(ctx context.Context, buildings []facility.Building) error {
	args := m.Called(ctx, buildings)
	return args.Error(0)
}

func (m *MockFacilityStore) PutFloors(ctx context.Context, floors []facility.Floor) error {
	args := m.Called(ctx, floors)
	return args.Error(0)
}

func (m *MockFacilityStore) PutSegments(ctx context.Context, segments []facility.Segment) error {
	args := m.Called(ctx, segments)
	return args.Error(0)
}

func (m *MockFacilityStore) Sites(ctx context.Context, tenantID string) ([]facility.Site, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) != nil {
		return args.Get(0).([]facility.Site), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFacilityStore) Buildings(ctx context.Context, tenantID string) ([]facility.Building, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) != nil {
		return args.Get(0).([]facility.Building), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFacilityStore) Floors(ctx context.Context, tenantID string) ([]facility.Floor, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) != nil {
		return args.Get(0).([]facility.Floor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFacilityStore) Segments(ctx context.Context, tenantID string) ([]facility.Segment, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) != nil {
		return args.Get(0).([]facility.Segment), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAPIKeyStore mocks the API key store port.
type MockAPIKeyStore struct {
	mock.Mock
}

func (m *MockAPIKeyStore) List(ctx context.Context, userID string) ([]apikey.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]apikey.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPIKeyStore) Create(ctx context.Context, key *apikey.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyStore) Update(ctx context.Context, key *apikey.APIKey) (*apikey.APIKey, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(*apikey.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAPIKeyStore) Delete(ctx context.Context, userID, keyID string) error {
	args := m.Called(ctx, userID, keyID)
	return args.Error(0)
}

// MockEventPublisher mocks the domain event publisher port.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
