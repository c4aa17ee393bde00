package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/apikey"
	pkgerrors "mab-backend/pkg/errors"
)

// DefaultAPIKeysTable is the key table name used when none is configured.
const DefaultAPIKeysTable = "UserApiKeys"

var _ ports.APIKeyStore = (*APIKeyStore)(nil)

// APIKeyStore implements ports.APIKeyStore on the user key table.
type APIKeyStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewAPIKeyStore creates an API key store on the given table.
func NewAPIKeyStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *APIKeyStore {
	if tableName == "" {
		tableName = DefaultAPIKeysTable
	}
	return &APIKeyStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// List retrieves all API keys owned by a user.
func (s *APIKeyStore) List(ctx context.Context, userID string) ([]apikey.APIKey, error) {
	keyEx := expression.Key("userId").Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build key query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	keys := make([]apikey.APIKey, 0)
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query api keys", err)
		}
		for _, item := range page.Items {
			var key apikey.APIKey
			if err := attributevalue.UnmarshalMap(item, &key); err != nil {
				s.logger.Warn("Failed to unmarshal api key record", zap.Error(err))
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Create persists a new API key record.
func (s *APIKeyStore) Create(ctx context.Context, key *apikey.APIKey) error {
	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal api key record", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError("put api key record", err)
	}

	s.logger.Info("Created api key record",
		zap.String("userId", key.UserID),
		zap.String("keyId", key.KeyID))
	return nil
}

// Update overwrites an existing record and returns the stored item. The
// write is conditional on the record existing under this user, so a
// stale or foreign keyId comes back as not-found.
func (s *APIKeyStore) Update(ctx context.Context, key *apikey.APIKey) (*apikey.APIKey, error) {
	update := expression.
		Set(expression.Name("name"), expression.Value(key.Name)).
		Set(expression.Name("key"), expression.Value(key.Key)).
		Set(expression.Name("service"), expression.Value(key.Service)).
		Set(expression.Name("updatedAt"), expression.Value(key.UpdatedAt))
	if key.URL != nil {
		update = update.Set(expression.Name("url"), expression.Value(*key.URL))
	}
	if key.ValidBefore != nil {
		update = update.Set(expression.Name("validBefore"), expression.Value(*key.ValidBefore))
	}
	if key.TenantID != nil {
		update = update.Set(expression.Name("tenantId"), expression.Value(*key.TenantID))
	}

	cond := expression.AttributeExists(expression.Name("userId"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build key update", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: key.UserID},
			"keyId":  &types.AttributeValueMemberS{Value: key.KeyID},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, pkgerrors.NewNotFoundError("API key")
		}
		return nil, pkgerrors.NewDatabaseError("update api key record", err)
	}

	var stored apikey.APIKey
	if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal updated api key", err)
	}

	s.logger.Info("Updated api key record",
		zap.String("userId", key.UserID),
		zap.String("keyId", key.KeyID))
	return &stored, nil
}

// Delete removes a key record. Deleting an absent record succeeds.
func (s *APIKeyStore) Delete(ctx context.Context, userID, keyID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
			"keyId":  &types.AttributeValueMemberS{Value: keyID},
		},
	}
	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError("delete api key record", err)
	}

	s.logger.Info("Deleted api key record",
		zap.String("userId", userID),
		zap.String("keyId", keyID))
	return nil
}
