package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mab-backend/domain/facility"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/tests/mocks"
)

func TestDirectoryService_Sites_ListsFlatRows(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)

	store.On("Sites", ctx, "tenant-1").Return([]facility.Site{
		{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{"city": "Austin"}},
		{TenantID: "tenant-1", SortKey: "S#site-2", Name: "Lab", Address: map[string]interface{}{}},
	}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	listings, err := svc.Sites(ctx, "tenant-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "site-1", listings[0].SiteID)
	assert.Equal(t, "HQ", listings[0].Name)
	assert.Equal(t, "tenant-1", listings[0].TenantID)
	assert.Equal(t, "site-2", listings[1].SiteID)
}

func TestDirectoryService_Sites_EmptyMirrorIsAnError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)
	store.On("Sites", ctx, "tenant-1").Return([]facility.Site{}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	_, err := svc.Sites(ctx, "tenant-1")

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNoData(err))
}

func TestDirectoryService_Sites_SkipsRecordsWithMalformedKeys(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)

	store.On("Sites", ctx, "tenant-1").Return([]facility.Site{
		{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{}},
		{TenantID: "tenant-1", SortKey: "B#not-a-site", Name: "Stray", Address: map[string]interface{}{}},
	}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	listings, err := svc.Sites(ctx, "tenant-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "site-1", listings[0].SiteID)
}

func TestDirectoryService_Buildings_EnrichesWithSiteNames(t *testing.T) {
	// Arrange: bldg-2 points at a site the mirror does not have.
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)

	store.On("Sites", ctx, "tenant-1").Return([]facility.Site{
		{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{}},
	}, nil)
	store.On("Buildings", ctx, "tenant-1").Return([]facility.Building{
		{TenantID: "tenant-1", SortKey: "B#site-1#bldg-1", Name: "Tower", Address: map[string]interface{}{}},
		{TenantID: "tenant-1", SortKey: "B#site-2#bldg-2", Name: "Annex", Address: map[string]interface{}{}},
	}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	listings, err := svc.Buildings(ctx, "tenant-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "HQ", listings[0].SiteName)
	assert.Equal(t, "bldg-1", listings[0].BuildingID)
	assert.Equal(t, "Unknown", listings[1].SiteName)
	assert.Equal(t, "bldg-2", listings[1].BuildingID)
}

func TestDirectoryService_Buildings_NameCacheFailureDegradesToUnknown(t *testing.T) {
	// Arrange: the sites query fails but the buildings query works.
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)

	store.On("Sites", ctx, "tenant-1").Return(nil, errors.New("throttled"))
	store.On("Buildings", ctx, "tenant-1").Return([]facility.Building{
		{TenantID: "tenant-1", SortKey: "B#site-1#bldg-1", Name: "Tower", Address: map[string]interface{}{}},
	}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	listings, err := svc.Buildings(ctx, "tenant-1")

	// Assert: enrichment degrades, the listing itself survives.
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Unknown", listings[0].SiteName)
}

func TestDirectoryService_Floors_EnrichesWithBothParentNames(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)

	store.On("Sites", ctx, "tenant-1").Return([]facility.Site{
		{TenantID: "tenant-1", SortKey: "S#site-1", Name: "HQ", Address: map[string]interface{}{}},
	}, nil)
	store.On("Buildings", ctx, "tenant-1").Return([]facility.Building{
		{TenantID: "tenant-1", SortKey: "B#site-1#bldg-1", Name: "Tower", Address: map[string]interface{}{}},
	}, nil)
	store.On("Floors", ctx, "tenant-1").Return([]facility.Floor{
		{TenantID: "tenant-1", SortKey: "F#site-1#bldg-1#floor-1", Name: "Mezzanine", Number: float64(2)},
	}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	listings, err := svc.Floors(ctx, "tenant-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, listings, 1)
	floor := listings[0]
	assert.Equal(t, "HQ", floor.SiteName)
	assert.Equal(t, "Tower", floor.BuildingName)
	assert.Equal(t, "floor-1", floor.FloorID)
	assert.Equal(t, "2", floor.Number)
}

func TestDirectoryService_Segments_ListsStoredShape(t *testing.T) {
	// Arrange: a record written before the newer attributes existed.
	ctx := context.Background()
	store := new(mocks.MockFacilityStore)

	store.On("Segments", ctx, "tenant-1").Return([]facility.Segment{
		{TenantID: "tenant-1", SortKey: "SEG#seg-1", ID: "seg-1", Name: "Corp", Encrypted: true, SettingStatus: "COMPLETED"},
	}, nil)

	svc := NewDirectoryService(store, zap.NewNop())

	// Act
	listings, err := svc.Segments(ctx, "tenant-1")

	// Assert
	require.NoError(t, err)
	require.Len(t, listings, 1)
	seg := listings[0]
	assert.Equal(t, "Corp", seg.Segment)
	assert.Equal(t, "Corp", seg.Name)
	assert.Equal(t, "seg-1", seg.ID)
	assert.Equal(t, "", seg.Version)
	assert.Equal(t, []string{}, seg.TagIDs)
}

func TestDirectoryService_RequiresTenantID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := NewDirectoryService(new(mocks.MockFacilityStore), zap.NewNop())

	// Act
	_, sitesErr := svc.Sites(ctx, "")
	_, buildingsErr := svc.Buildings(ctx, "")
	_, floorsErr := svc.Floors(ctx, "")
	_, segmentsErr := svc.Segments(ctx, "")

	// Assert
	for _, err := range []error{sitesErr, buildingsErr, floorsErr, segmentsErr} {
		assert.True(t, pkgerrors.IsMissingCredential(err))
	}
}
