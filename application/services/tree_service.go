package services

import (
	"context"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/facility"
	pkgerrors "mab-backend/pkg/errors"
)

// TreeService assembles the nested site/building/floor hierarchy from
// the mirrored records, with the tenant's segments riding along as a
// flat list.
type TreeService struct {
	store  ports.FacilityStore
	logger *zap.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(store ports.FacilityStore, logger *zap.Logger) *TreeService {
	return &TreeService{
		store:  store,
		logger: logger,
	}
}

// Tree builds the hierarchy for one tenant. The four category reads are
// independent: a failed category degrades to empty rather than failing
// the build. Only a tenant with no sites, buildings, or floors at all
// is an error.
func (s *TreeService) Tree(ctx context.Context, tenantID string) (*facility.Tree, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewMissingCredentialError("tenant id (x-tenant-id header)")
	}

	sites, err := s.store.Sites(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to load sites for tree", zap.String("tenantID", tenantID), zap.Error(err))
		sites = nil
	}

	buildings, err := s.store.Buildings(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to load buildings for tree", zap.String("tenantID", tenantID), zap.Error(err))
		buildings = nil
	}

	floors, err := s.store.Floors(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to load floors for tree", zap.String("tenantID", tenantID), zap.Error(err))
		floors = nil
	}

	segments, err := s.store.Segments(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to load segments for tree", zap.String("tenantID", tenantID), zap.Error(err))
		segments = nil
	}

	if len(sites) == 0 && len(buildings) == 0 && len(floors) == 0 {
		return nil, pkgerrors.NewNoDataError("facility data", tenantID)
	}

	tree := facility.BuildTree(tenantID, sites, buildings, floors)

	for _, seg := range segments {
		tree.Segments = append(tree.Segments, facility.TreeSegment{
			TenantID: seg.TenantID,
			Segment:  seg.Name,
		})
	}

	return tree, nil
}
