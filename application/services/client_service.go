package services

import (
	"context"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/facility"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/pkg/utils"
)

// MACAuthRequest is the PATCH body approving or denying a client's MAC
// authorization.
type MACAuthRequest struct {
	ClientID    string `json:"clientId" validate:"required"`
	MACAddress  string `json:"macAddress" validate:"required"`
	SegmentID   string `json:"segmentId" validate:"required"`
	State       string `json:"state" validate:"required,oneof=AUTH_OK AUTH_DENIED"`
	Description string `json:"description"`
}

// ClientService serves the clients awaiting MAC authorization and
// forwards approval decisions upstream.
type ClientService struct {
	api    ports.NileAPI
	logger *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(api ports.NileAPI, logger *zap.Logger) *ClientService {
	return &ClientService{
		api:    api,
		logger: logger,
	}
}

// List fetches the tenant's waiting clients from upstream and flattens
// them for the portal. An empty upstream list is a valid empty result.
func (s *ClientService) List(ctx context.Context, cred ports.Credential) ([]facility.Client, error) {
	payload, err := s.api.GetClients(ctx, cred)
	if err != nil {
		return nil, err
	}

	clients := make([]facility.Client, 0, len(payload))
	for _, p := range payload {
		client, ok := facility.ClientFromPayload(p)
		if !ok {
			s.logger.Debug("Skipping client entry without clientConfig")
			continue
		}
		clients = append(clients, *client)
	}
	return clients, nil
}

// UpdateMACAuth validates the request and forwards the state change
// upstream. The returned result carries the upstream status verbatim,
// including rejections.
func (s *ClientService) UpdateMACAuth(ctx context.Context, cred ports.Credential, req MACAuthRequest) (*ports.MACAuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	s.logger.Info("Forwarding MAC auth update",
		zap.String("clientID", req.ClientID),
		zap.String("macAddress", req.MACAddress),
		zap.String("state", req.State),
	)

	return s.api.UpdateMACAuth(ctx, cred.APIKey, ports.MACAuthUpdate{
		ClientID:    req.ClientID,
		MACAddress:  req.MACAddress,
		SegmentID:   req.SegmentID,
		State:       req.State,
		Description: req.Description,
	})
}
