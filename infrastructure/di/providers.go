// Package di wires the application together. Providers are plain
// constructors; wire generates the assembly in wire_gen.go.
package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/application/services"
	"mab-backend/infrastructure/config"
	"mab-backend/infrastructure/messaging/eventbridge"
	"mab-backend/infrastructure/nile"
	"mab-backend/infrastructure/persistence/dynamodb"
	"mab-backend/interfaces/http/rest"
	"mab-backend/interfaces/http/rest/handlers"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/pkg/observability"
)

// ProvideLogger creates the logger for the configured environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the CloudWatch metrics sink
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("MABOnboarding/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer. Subsegments are named after
// the running Lambda so the api and sync functions stay distinguishable
// in the trace map.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	name := cfg.LambdaFunctionName
	if name == "" {
		name = "mab-backend"
	}
	return observability.NewTracer(name)
}

// ProvideErrorHandler creates the HTTP error responder
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideUpstreamHTTPClient creates the HTTP client used against the
// Nile API, bounded by the configured timeout and traced when tracing
// is enabled.
func ProvideUpstreamHTTPClient(cfg *config.Config) *http.Client {
	client := &http.Client{Timeout: cfg.UpstreamTimeout}
	if cfg.EnableTracing {
		return observability.WrapHTTPClient(client)
	}
	return client
}

// ProvideNileAPI creates the upstream Nile API client
func ProvideNileAPI(cfg *config.Config, httpClient *http.Client, logger *zap.Logger, metrics *observability.Metrics) ports.NileAPI {
	return nile.NewClient(cfg.NileBaseURL, httpClient, logger, metrics)
}

// ProvideFacilityStore creates the mirrored facility store
func ProvideFacilityStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.FacilityStore {
	return dynamodb.NewFacilityStore(client, cfg.FacilityTableName, logger)
}

// ProvideAPIKeyStore creates the per-user API key store
func ProvideAPIKeyStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.APIKeyStore {
	return dynamodb.NewAPIKeyStore(client, cfg.APIKeysTableName, logger)
}

// ProvideEventPublisher creates the sync event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.SyncEventBus, logger)
}

// ProvideSyncService creates the tenant sync service
func ProvideSyncService(
	api ports.NileAPI,
	store ports.FacilityStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.SyncService {
	return services.NewSyncService(api, store, publisher, metrics, logger)
}

// ProvideTreeService creates the tree service
func ProvideTreeService(store ports.FacilityStore, logger *zap.Logger) *services.TreeService {
	return services.NewTreeService(store, logger)
}

// ProvideDirectoryService creates the flat-listing service
func ProvideDirectoryService(store ports.FacilityStore, logger *zap.Logger) *services.DirectoryService {
	return services.NewDirectoryService(store, logger)
}

// ProvideClientService creates the MAC auth client service
func ProvideClientService(api ports.NileAPI, logger *zap.Logger) *services.ClientService {
	return services.NewClientService(api, logger)
}

// ProvideAPIKeyService creates the API key service
func ProvideAPIKeyService(store ports.APIKeyStore, logger *zap.Logger) *services.APIKeyService {
	return services.NewAPIKeyService(store, logger)
}

// ProvideFacilityHandler creates the facility read handler
func ProvideFacilityHandler(
	directory *services.DirectoryService,
	tree *services.TreeService,
	errors *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.FacilityHandler {
	return handlers.NewFacilityHandler(directory, tree, errors, logger)
}

// ProvideClientHandler creates the MAC auth handler
func ProvideClientHandler(clients *services.ClientService, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.ClientHandler {
	return handlers.NewClientHandler(clients, errors, logger)
}

// ProvideSyncHandler creates the sync trigger handler
func ProvideSyncHandler(sync *services.SyncService, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.SyncHandler {
	return handlers.NewSyncHandler(sync, errors, logger)
}

// ProvideAPIKeyHandler creates the API key handler
func ProvideAPIKeyHandler(keys *services.APIKeyService, logger *zap.Logger) *handlers.APIKeyHandler {
	return handlers.NewAPIKeyHandler(keys, logger)
}

// ProvideRouter assembles the REST router
func ProvideRouter(
	facility *handlers.FacilityHandler,
	clients *handlers.ClientHandler,
	sync *handlers.SyncHandler,
	apiKeys *handlers.APIKeyHandler,
	errors *pkgerrors.ErrorHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(facility, clients, sync, apiKeys, errors, cfg.CORSAllowedOrigins, logger)
}
