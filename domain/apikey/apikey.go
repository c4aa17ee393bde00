// Package apikey holds the per-user credential records managed through the
// portal. Each record stores one named upstream API key for one user.
package apikey

import (
	"github.com/google/uuid"

	"mab-backend/pkg/utils"
)

// APIKey is a stored credential record. UserID and KeyID form the table key;
// the optional fields are pointers so an absent field stays absent in storage.
type APIKey struct {
	UserID      string  `json:"userId" dynamodbav:"userId"`
	KeyID       string  `json:"keyId" dynamodbav:"keyId"`
	Name        string  `json:"name" dynamodbav:"name"`
	Key         string  `json:"key" dynamodbav:"key"`
	Service     string  `json:"service" dynamodbav:"service"`
	URL         *string `json:"url,omitempty" dynamodbav:"url,omitempty"`
	ValidBefore *string `json:"validBefore,omitempty" dynamodbav:"validBefore,omitempty"`
	TenantID    *string `json:"tenantId,omitempty" dynamodbav:"tenantId,omitempty"`
	CreatedAt   int64   `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt" dynamodbav:"updatedAt"`
}

// New creates a key record with a generated ID and current timestamps.
func New(userID, name, key, service string) *APIKey {
	now := utils.NowEpoch()
	return &APIKey{
		UserID:    userID,
		KeyID:     uuid.New().String(),
		Name:      name,
		Key:       key,
		Service:   service,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes the update timestamp.
func (k *APIKey) Touch() {
	k.UpdatedAt = utils.NowEpoch()
}
