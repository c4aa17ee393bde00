package events

import "time"

// Source identifies this service on the event bus.
const Source = "mab.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// SyncCompleted is raised when a tenant's facility mirror finishes refreshing
type SyncCompleted struct {
	BaseEvent
	TenantID string         `json:"tenant_id"`
	Counts   map[string]int `json:"counts"`
}

// NewSyncCompleted creates a SyncCompleted event
func NewSyncCompleted(tenantID string, counts map[string]int, timestamp time.Time) SyncCompleted {
	return SyncCompleted{
		BaseEvent: BaseEvent{
			AggregateID: tenantID,
			EventType:   "facility.sync_completed",
			Timestamp:   timestamp,
			Version:     1,
		},
		TenantID: tenantID,
		Counts:   counts,
	}
}

// SyncFailed is raised when a tenant's facility refresh aborts partway
type SyncFailed struct {
	BaseEvent
	TenantID string `json:"tenant_id"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// NewSyncFailed creates a SyncFailed event
func NewSyncFailed(tenantID, stage, reason string, timestamp time.Time) SyncFailed {
	return SyncFailed{
		BaseEvent: BaseEvent{
			AggregateID: tenantID,
			EventType:   "facility.sync_failed",
			Timestamp:   timestamp,
			Version:     1,
		},
		TenantID: tenantID,
		Stage:    stage,
		Reason:   reason,
	}
}
