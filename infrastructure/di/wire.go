//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"mab-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideErrorHandler,
	ProvideUpstreamHTTPClient,
	ProvideNileAPI,
	ProvideFacilityStore,
	ProvideAPIKeyStore,
	ProvideEventPublisher,
	ProvideSyncService,
	ProvideTreeService,
	ProvideDirectoryService,
	ProvideClientService,
	ProvideAPIKeyService,
	ProvideFacilityHandler,
	ProvideClientHandler,
	ProvideSyncHandler,
	ProvideAPIKeyHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
