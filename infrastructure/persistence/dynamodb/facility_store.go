// Package dynamodb implements the persistence ports on DynamoDB. The
// facility mirror is a single table keyed by tenant id with typed,
// "#"-delimited sort keys; API keys live in their own table keyed by
// user id.
package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/facility"
	pkgerrors "mab-backend/pkg/errors"
)

// DefaultFacilityTable is the mirror table name used when none is
// configured.
const DefaultFacilityTable = "tenant"

var _ ports.FacilityStore = (*FacilityStore)(nil)

// FacilityStore implements ports.FacilityStore on the tenant mirror table.
type FacilityStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewFacilityStore creates a facility store on the given table.
func NewFacilityStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *FacilityStore {
	if tableName == "" {
		tableName = DefaultFacilityTable
	}
	return &FacilityStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// PutSites writes site records, replacing items with the same keys.
func (s *FacilityStore) PutSites(ctx context.Context, sites []facility.Site) error {
	for _, site := range sites {
		if err := s.putRecord(ctx, site, "site"); err != nil {
			return err
		}
	}
	s.logger.Info("Stored site records", zap.Int("count", len(sites)))
	return nil
}

// PutBuildings writes building records, replacing items with the same keys.
func (s *FacilityStore) PutBuildings(ctx context.Context, buildings []facility.Building) error {
	for _, building := range buildings {
		if err := s.putRecord(ctx, building, "building"); err != nil {
			return err
		}
	}
	s.logger.Info("Stored building records", zap.Int("count", len(buildings)))
	return nil
}

// PutFloors writes floor records, replacing items with the same keys.
func (s *FacilityStore) PutFloors(ctx context.Context, floors []facility.Floor) error {
	for _, floor := range floors {
		if err := s.putRecord(ctx, floor, "floor"); err != nil {
			return err
		}
	}
	s.logger.Info("Stored floor records", zap.Int("count", len(floors)))
	return nil
}

// PutSegments writes segment records, replacing items with the same keys.
func (s *FacilityStore) PutSegments(ctx context.Context, segments []facility.Segment) error {
	for _, segment := range segments {
		if err := s.putRecord(ctx, segment, "segment"); err != nil {
			return err
		}
	}
	s.logger.Info("Stored segment records", zap.Int("count", len(segments)))
	return nil
}

// Sites retrieves all site records for a tenant.
func (s *FacilityStore) Sites(ctx context.Context, tenantID string) ([]facility.Site, error) {
	items, err := s.queryPrefix(ctx, tenantID, facility.SitePrefix)
	if err != nil {
		return nil, err
	}

	sites := make([]facility.Site, 0, len(items))
	for _, item := range items {
		var site facility.Site
		if err := attributevalue.UnmarshalMap(item, &site); err != nil {
			s.logger.Warn("Failed to unmarshal site record", zap.Error(err))
			continue
		}
		sites = append(sites, site)
	}
	return sites, nil
}

// Buildings retrieves all building records for a tenant.
func (s *FacilityStore) Buildings(ctx context.Context, tenantID string) ([]facility.Building, error) {
	items, err := s.queryPrefix(ctx, tenantID, facility.BuildingPrefix)
	if err != nil {
		return nil, err
	}

	buildings := make([]facility.Building, 0, len(items))
	for _, item := range items {
		var building facility.Building
		if err := attributevalue.UnmarshalMap(item, &building); err != nil {
			s.logger.Warn("Failed to unmarshal building record", zap.Error(err))
			continue
		}
		buildings = append(buildings, building)
	}
	return buildings, nil
}

// Floors retrieves all floor records for a tenant.
func (s *FacilityStore) Floors(ctx context.Context, tenantID string) ([]facility.Floor, error) {
	items, err := s.queryPrefix(ctx, tenantID, facility.FloorPrefix)
	if err != nil {
		return nil, err
	}

	floors := make([]facility.Floor, 0, len(items))
	for _, item := range items {
		var floor facility.Floor
		if err := attributevalue.UnmarshalMap(item, &floor); err != nil {
			s.logger.Warn("Failed to unmarshal floor record", zap.Error(err))
			continue
		}
		floors = append(floors, floor)
	}
	return floors, nil
}

// Segments retrieves all segment records for a tenant.
func (s *FacilityStore) Segments(ctx context.Context, tenantID string) ([]facility.Segment, error) {
	items, err := s.queryPrefix(ctx, tenantID, facility.SegmentPrefix)
	if err != nil {
		return nil, err
	}

	segments := make([]facility.Segment, 0, len(items))
	for _, item := range items {
		var segment facility.Segment
		if err := attributevalue.UnmarshalMap(item, &segment); err != nil {
			s.logger.Warn("Failed to unmarshal segment record", zap.Error(err))
			continue
		}
		segments = append(segments, segment)
	}
	return segments, nil
}

func (s *FacilityStore) putRecord(ctx context.Context, record interface{}, kind string) error {
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return pkgerrors.NewDatabaseError(fmt.Sprintf("marshal %s record", kind), err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError(fmt.Sprintf("put %s record", kind), err)
	}
	return nil
}

// queryPrefix returns every item in the tenant partition whose sort key
// starts with the given prefix, following pagination to the end.
func (s *FacilityStore) queryPrefix(ctx context.Context, tenantID, prefix string) ([]map[string]types.AttributeValue, error) {
	if tenantID == "" {
		return nil, pkgerrors.NewValidationError("tenant id is required")
	}

	keyEx := expression.Key("pk").Equal(expression.Value(tenantID)).
		And(expression.Key("sk").BeginsWith(prefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build facility query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query facility records", err)
		}
		items = append(items, page.Items...)
	}

	s.logger.Debug("Queried facility partition",
		zap.String("tenantId", tenantID),
		zap.String("prefix", prefix),
		zap.Int("items", len(items)))
	return items, nil
}
