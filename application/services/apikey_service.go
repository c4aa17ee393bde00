package services

import (
	"context"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/apikey"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/pkg/utils"
)

// CreateKeyRequest is the POST body for a new API key. UserID is only a
// resolution fallback for non-interactive calls; the acting user comes
// from the gateway claims when present.
type CreateKeyRequest struct {
	Name        string  `json:"name" validate:"required"`
	Key         string  `json:"key" validate:"required"`
	Service     string  `json:"service" validate:"required"`
	URL         *string `json:"url,omitempty"`
	ValidBefore *string `json:"validBefore,omitempty"`
	TenantID    *string `json:"tenantId,omitempty"`
	UserID      string  `json:"userId,omitempty"`
}

// UpdateKeyRequest is the PUT body replacing an existing API key's
// fields. Absent optional fields leave the stored values untouched.
type UpdateKeyRequest struct {
	KeyID       string  `json:"keyId" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Key         string  `json:"key" validate:"required"`
	Service     string  `json:"service" validate:"required"`
	URL         *string `json:"url,omitempty"`
	ValidBefore *string `json:"validBefore,omitempty"`
	TenantID    *string `json:"tenantId,omitempty"`
	UserID      string  `json:"userId,omitempty"`
}

// APIKeyService manages the per-user API key records.
type APIKeyService struct {
	store  ports.APIKeyStore
	logger *zap.Logger
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(store ports.APIKeyStore, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		store:  store,
		logger: logger,
	}
}

// List returns all keys owned by the user, never nil.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]apikey.APIKey, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("User ID is required")
	}
	return s.store.List(ctx, userID)
}

// Create stores a new key record for the user and returns it with the
// generated id and timestamps.
func (s *APIKeyService) Create(ctx context.Context, userID string, req CreateKeyRequest) (*apikey.APIKey, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("User ID is required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	key := apikey.New(userID, req.Name, req.Key, req.Service)
	key.URL = req.URL
	key.ValidBefore = req.ValidBefore
	key.TenantID = req.TenantID

	if err := s.store.Create(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("API key created",
		zap.String("userID", userID),
		zap.String("keyID", key.KeyID),
		zap.String("service", key.Service),
	)
	return key, nil
}

// Update replaces the named key's fields and returns the stored item. A
// key that does not exist (or belongs to another user) surfaces as a
// not-found error.
func (s *APIKeyService) Update(ctx context.Context, userID string, req UpdateKeyRequest) (*apikey.APIKey, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("User ID is required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	key := &apikey.APIKey{
		UserID:      userID,
		KeyID:       req.KeyID,
		Name:        req.Name,
		Key:         req.Key,
		Service:     req.Service,
		URL:         req.URL,
		ValidBefore: req.ValidBefore,
		TenantID:    req.TenantID,
	}
	key.Touch()

	stored, err := s.store.Update(ctx, key)
	if err != nil {
		return nil, err
	}

	s.logger.Info("API key updated",
		zap.String("userID", userID),
		zap.String("keyID", req.KeyID),
	)
	return stored, nil
}

// Delete removes the named key. Deleting a key that does not exist
// still succeeds.
func (s *APIKeyService) Delete(ctx context.Context, userID, keyID string) error {
	if userID == "" {
		return pkgerrors.NewValidationError("User ID is required")
	}
	if keyID == "" {
		return pkgerrors.NewValidationError("Key ID is required")
	}

	if err := s.store.Delete(ctx, userID, keyID); err != nil {
		return err
	}

	s.logger.Info("API key deleted",
		zap.String("userID", userID),
		zap.String("keyID", keyID),
	)
	return nil
}
