package di

import (
	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/application/services"
	"mab-backend/infrastructure/config"
	"mab-backend/interfaces/http/rest"
	"mab-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	Tracer           *observability.Tracer
	NileAPI          ports.NileAPI
	FacilityStore    ports.FacilityStore
	APIKeyStore      ports.APIKeyStore
	Publisher        ports.EventPublisher
	SyncService      *services.SyncService
	TreeService      *services.TreeService
	DirectoryService *services.DirectoryService
	ClientService    *services.ClientService
	APIKeyService    *services.APIKeyService
	Router           *rest.Router
}

// Shutdown flushes buffered log output
func (c *Container) Shutdown() error {
	return c.Logger.Sync()
}
