// Package main implements the Lambda handler for scheduled tenant syncs.
// A periodic EventBridge rule (or a direct invoke) refreshes the facility
// mirror so portal reads never wait on the upstream API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/application/services"
	"mab-backend/infrastructure/config"
	"mab-backend/infrastructure/di"
	"mab-backend/pkg/observability"
)

// Global dependencies for Lambda performance optimization
var (
	cfg         *config.Config
	syncService *services.SyncService
	tracer      *observability.Tracer
	logger      *zap.Logger
)

func init() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	syncService = container.SyncService
	tracer = container.Tracer
	logger = container.Logger

	log.Println("Sync handler initialized successfully")
}

// SyncRequest is the direct-invoke payload. Scheduled rules omit the
// key and fall back to the configured sync credential.
type SyncRequest struct {
	TenantID string `json:"tenantId"`
	APIKey   string `json:"apiKey"`
}

// credential fills missing request fields from configuration
func credential(req SyncRequest) ports.Credential {
	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = cfg.SyncTenantID
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = cfg.SyncAPIKey
	}
	return ports.Credential{TenantID: tenantID, APIKey: apiKey}
}

// runSync performs one full refresh for the tenant
func runSync(ctx context.Context, cred ports.Credential) error {
	return tracer.TraceFunction(ctx, "tenant-sync", func(ctx context.Context) error {
		tracer.Annotate(ctx, "tenant_id", cred.TenantID)

		result, err := syncService.Run(ctx, cred)
		if err != nil {
			logger.Error("Tenant sync failed",
				zap.String("tenant_id", cred.TenantID),
				zap.Error(err),
			)
			return err
		}

		logger.Info("Tenant sync completed",
			zap.String("tenant_id", cred.TenantID),
			zap.Any("counts", result.Counts),
		)
		return nil
	})
}

// handler is the main Lambda handler for different invocation types
func handler(ctx context.Context, event json.RawMessage) error {
	log.Printf("Received event: %s", string(event))

	// Try to parse as EventBridge event (scheduled invocation)
	var scheduledEvent awsevents.CloudWatchEvent
	if err := json.Unmarshal(event, &scheduledEvent); err == nil && scheduledEvent.Source != "" {
		var req SyncRequest
		if len(scheduledEvent.Detail) > 0 {
			if err := json.Unmarshal(scheduledEvent.Detail, &req); err != nil {
				return fmt.Errorf("failed to parse scheduled event detail: %w", err)
			}
		}
		return runSync(ctx, credential(req))
	}

	// Try to parse as direct invocation
	var req SyncRequest
	if err := json.Unmarshal(event, &req); err == nil {
		return runSync(ctx, credential(req))
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	if cfg.IsLambda {
		log.Println("Starting sync Lambda")
		lambda.Start(handler)
	} else {
		// Local mode runs a single refresh with the configured credential
		log.Println("Running single sync pass")

		if err := runSync(context.Background(), credential(SyncRequest{})); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}

		log.Println("Sync finished")
	}
}
