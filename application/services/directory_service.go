package services

import (
	"context"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/facility"
	pkgerrors "mab-backend/pkg/errors"
)

// DirectoryService serves the flat facility listings. Building and
// floor rows are enriched with their parent names through per-request
// caches loaded once from the mirror.
type DirectoryService struct {
	store  ports.FacilityStore
	logger *zap.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(store ports.FacilityStore, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		store:  store,
		logger: logger,
	}
}

// Sites lists the tenant's sites as flat rows.
func (s *DirectoryService) Sites(ctx context.Context, tenantID string) ([]facility.SiteListing, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewMissingCredentialError("tenant id (x-tenant-id header)")
	}

	records, err := s.store.Sites(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNoDataError("sites", tenantID)
	}

	listings := make([]facility.SiteListing, 0, len(records))
	for _, record := range records {
		listing, err := record.Listing()
		if err != nil {
			s.logger.Warn("Skipping site record with malformed key", zap.String("sk", record.SortKey), zap.Error(err))
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// Buildings lists the tenant's buildings as flat rows, each carrying
// its parent site's display name.
func (s *DirectoryService) Buildings(ctx context.Context, tenantID string) ([]facility.BuildingListing, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewMissingCredentialError("tenant id (x-tenant-id header)")
	}

	siteNames := s.siteNames(ctx, tenantID)

	records, err := s.store.Buildings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNoDataError("buildings", tenantID)
	}

	listings := make([]facility.BuildingListing, 0, len(records))
	for _, record := range records {
		siteID, err := record.SiteID()
		if err != nil {
			s.logger.Warn("Skipping building record with malformed key", zap.String("sk", record.SortKey), zap.Error(err))
			continue
		}
		listing, err := record.Listing(nameOr(siteNames, siteID))
		if err != nil {
			s.logger.Warn("Skipping building record with malformed key", zap.String("sk", record.SortKey), zap.Error(err))
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// Floors lists the tenant's floors as flat rows, each carrying its
// parent site and building display names.
func (s *DirectoryService) Floors(ctx context.Context, tenantID string) ([]facility.FloorListing, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewMissingCredentialError("tenant id (x-tenant-id header)")
	}

	siteNames := s.siteNames(ctx, tenantID)
	buildingNames := s.buildingNames(ctx, tenantID)

	records, err := s.store.Floors(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNoDataError("floors", tenantID)
	}

	listings := make([]facility.FloorListing, 0, len(records))
	for _, record := range records {
		siteID, buildingID, _, err := facility.ParseFloorKey(record.SortKey)
		if err != nil {
			s.logger.Warn("Skipping floor record with malformed key", zap.String("sk", record.SortKey), zap.Error(err))
			continue
		}
		listing, err := record.Listing(nameOr(siteNames, siteID), nameOr(buildingNames, buildingID))
		if err != nil {
			s.logger.Warn("Skipping floor record with malformed key", zap.String("sk", record.SortKey), zap.Error(err))
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// Segments lists the tenant's network segments in their full stored
// shape.
func (s *DirectoryService) Segments(ctx context.Context, tenantID string) ([]facility.SegmentListing, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewMissingCredentialError("tenant id (x-tenant-id header)")
	}

	records, err := s.store.Segments(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNoDataError("network segments", tenantID)
	}

	listings := make([]facility.SegmentListing, 0, len(records))
	for _, record := range records {
		listings = append(listings, record.Listing())
	}
	return listings, nil
}

// siteNames loads the site id to display name cache for one request. A
// failed load degrades to an empty cache, so enrichment resolves to
// "Unknown" instead of failing the listing.
func (s *DirectoryService) siteNames(ctx context.Context, tenantID string) map[string]string {
	records, err := s.store.Sites(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to load site names", zap.String("tenantID", tenantID), zap.Error(err))
		return map[string]string{}
	}

	names := make(map[string]string, len(records))
	for _, record := range records {
		siteID, err := facility.ParseSiteKey(record.SortKey)
		if err != nil {
			continue
		}
		names[siteID] = record.Name
	}
	return names
}

// buildingNames loads the building id to display name cache for one
// request, degrading to empty on failure like siteNames.
func (s *DirectoryService) buildingNames(ctx context.Context, tenantID string) map[string]string {
	records, err := s.store.Buildings(ctx, tenantID)
	if err != nil {
		s.logger.Warn("Failed to load building names", zap.String("tenantID", tenantID), zap.Error(err))
		return map[string]string{}
	}

	names := make(map[string]string, len(records))
	for _, record := range records {
		buildingID, err := record.BuildingID()
		if err != nil {
			continue
		}
		names[buildingID] = record.Name
	}
	return names
}

// nameOr resolves an id against a name cache, defaulting to "Unknown".
func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "Unknown"
}
