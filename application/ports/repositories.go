package ports

import (
	"context"

	"mab-backend/domain/apikey"
	"mab-backend/domain/events"
	"mab-backend/domain/facility"
)

// Credential identifies a tenant against the upstream Nile API.
// Both values travel on every read request as headers.
type Credential struct {
	TenantID string
	APIKey   string
}

// MACAuthUpdate describes a MAC authorization change for a waiting client.
type MACAuthUpdate struct {
	ClientID    string
	MACAddress  string
	SegmentID   string
	State       string
	Description string
}

// MACAuthResult carries the upstream outcome of a MAC authorization update.
// Status is the HTTP status to surface and Body the decoded (or wrapped)
// upstream payload; upstream rejections arrive here rather than as errors so
// callers can relay them verbatim.
type MACAuthResult struct {
	Status int
	Body   interface{}
}

// NileAPI defines the interface for the upstream Nile cloud API
// This is a port in hexagonal architecture - callers don't know it speaks HTTP
type NileAPI interface {
	// GetSegments retrieves the tenant's network segments
	GetSegments(ctx context.Context, cred Credential) ([]map[string]interface{}, error)

	// GetSites retrieves the tenant's sites
	GetSites(ctx context.Context, cred Credential) ([]map[string]interface{}, error)

	// GetBuildings retrieves the tenant's buildings
	GetBuildings(ctx context.Context, cred Credential) ([]map[string]interface{}, error)

	// GetFloors retrieves the tenant's floors
	GetFloors(ctx context.Context, cred Credential) ([]map[string]interface{}, error)

	// GetClients retrieves the tenant's clients waiting for MAC authorization
	GetClients(ctx context.Context, cred Credential) ([]map[string]interface{}, error)

	// UpdateMACAuth approves or denies a client's MAC authorization upstream
	UpdateMACAuth(ctx context.Context, apiKey string, update MACAuthUpdate) (*MACAuthResult, error)
}

// FacilityStore defines the interface for mirrored facility persistence
type FacilityStore interface {
	// PutSites writes site records, replacing items with the same keys
	PutSites(ctx context.Context, sites []facility.Site) error

	// PutBuildings writes building records, replacing items with the same keys
	PutBuildings(ctx context.Context, buildings []facility.Building) error

	// PutFloors writes floor records, replacing items with the same keys
	PutFloors(ctx context.Context, floors []facility.Floor) error

	// PutSegments writes segment records, replacing items with the same keys
	PutSegments(ctx context.Context, segments []facility.Segment) error

	// Sites retrieves all site records for a tenant
	Sites(ctx context.Context, tenantID string) ([]facility.Site, error)

	// Buildings retrieves all building records for a tenant
	Buildings(ctx context.Context, tenantID string) ([]facility.Building, error)

	// Floors retrieves all floor records for a tenant
	Floors(ctx context.Context, tenantID string) ([]facility.Floor, error)

	// Segments retrieves all segment records for a tenant
	Segments(ctx context.Context, tenantID string) ([]facility.Segment, error)
}

// APIKeyStore defines the interface for per-user API key persistence
type APIKeyStore interface {
	// List retrieves all API keys owned by a user
	List(ctx context.Context, userID string) ([]apikey.APIKey, error)

	// Create persists a new API key record
	Create(ctx context.Context, key *apikey.APIKey) error

	// Update overwrites an existing record and returns the stored item;
	// a missing record yields a not-found error
	Update(ctx context.Context, key *apikey.APIKey) (*apikey.APIKey, error)

	// Delete removes a key record
	Delete(ctx context.Context, userID, keyID string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error
}
