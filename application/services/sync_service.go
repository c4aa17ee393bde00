// Package services holds the application services behind the HTTP
// handlers: tenant sync, tree and listing reads, client MAC auth, and
// per-user API key management.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mab-backend/application/ports"
	"mab-backend/domain/events"
	"mab-backend/domain/facility"
	pkgerrors "mab-backend/pkg/errors"
	"mab-backend/pkg/observability"
	"mab-backend/pkg/retry"
)

// SyncSuccessMessage is the portal-facing confirmation for a full sync.
const SyncSuccessMessage = "Site(s), Building(s), Floor(s), and Segment(s) updated successfully."

// SyncResult reports one finished sync run.
type SyncResult struct {
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts"`
}

// SyncService refreshes the mirrored facility data for one tenant: it
// pulls each entity type from the Nile API, converts the payloads into
// store records, and overwrites the mirror. Records missing required
// fields are skipped; an exhausted fetch aborts the run and leaves the
// types already written in place.
type SyncService struct {
	api       ports.NileAPI
	store     ports.FacilityStore
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger

	// fetchPolicy wraps each upstream read; tests shrink its backoff.
	fetchPolicy retry.Policy
}

// NewSyncService creates a new sync service
func NewSyncService(
	api ports.NileAPI,
	store ports.FacilityStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		api:       api,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		fetchPolicy: retry.Policy{
			MaxAttempts: 5,
			Backoff:     retry.Exponential(time.Second, 2),
			// Missing credentials never heal on their own
			Retryable: func(err error) bool {
				return !pkgerrors.IsMissingCredential(err)
			},
		},
	}
}

// Run performs a full sync for the tenant identified by the credential.
// Entity types refresh in sequence; the first unrecoverable failure
// aborts the run. Already-written types stay committed, so a rerun
// converges the mirror.
func (s *SyncService) Run(ctx context.Context, cred ports.Credential) (*SyncResult, error) {
	started := time.Now()
	s.logger.Info("Starting tenant sync", zap.String("tenantID", cred.TenantID))

	counts := make(map[string]int, 4)

	segments, err := s.syncSegments(ctx, cred)
	if err != nil {
		return nil, s.abort(ctx, cred.TenantID, "segments", err)
	}
	counts["segments"] = segments

	sites, err := s.syncSites(ctx, cred)
	if err != nil {
		return nil, s.abort(ctx, cred.TenantID, "sites", err)
	}
	counts["sites"] = sites

	buildings, err := s.syncBuildings(ctx, cred)
	if err != nil {
		return nil, s.abort(ctx, cred.TenantID, "buildings", err)
	}
	counts["buildings"] = buildings

	floors, err := s.syncFloors(ctx, cred)
	if err != nil {
		return nil, s.abort(ctx, cred.TenantID, "floors", err)
	}
	counts["floors"] = floors

	s.logger.Info("Tenant sync finished",
		zap.String("tenantID", cred.TenantID),
		zap.Any("counts", counts),
		zap.Duration("elapsed", time.Since(started)),
	)

	// Metrics and the completion event are best effort; the sync result
	// stands either way.
	s.metrics.RecordSyncCounts(ctx, cred.TenantID, counts)
	if err := s.publisher.Publish(ctx, events.NewSyncCompleted(cred.TenantID, counts, time.Now())); err != nil {
		s.logger.Warn("Failed to publish sync completion event", zap.Error(err))
	}

	return &SyncResult{Message: SyncSuccessMessage, Counts: counts}, nil
}

func (s *SyncService) syncSegments(ctx context.Context, cred ports.Credential) (int, error) {
	payload, err := s.fetch(ctx, func(ctx context.Context) ([]map[string]interface{}, error) {
		return s.api.GetSegments(ctx, cred)
	})
	if err != nil {
		return 0, err
	}

	records := make([]facility.Segment, 0, len(payload))
	for _, p := range payload {
		record, ok := facility.SegmentFromPayload(p)
		if !ok {
			s.logger.Debug("Skipping segment record with missing fields", zap.Any("id", p["id"]))
			continue
		}
		records = append(records, *record)
	}

	if err := s.store.PutSegments(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *SyncService) syncSites(ctx context.Context, cred ports.Credential) (int, error) {
	payload, err := s.fetch(ctx, func(ctx context.Context) ([]map[string]interface{}, error) {
		return s.api.GetSites(ctx, cred)
	})
	if err != nil {
		return 0, err
	}

	records := make([]facility.Site, 0, len(payload))
	for _, p := range payload {
		record, ok := facility.SiteFromPayload(p)
		if !ok {
			s.logger.Debug("Skipping site record with missing fields", zap.Any("id", p["id"]))
			continue
		}
		records = append(records, *record)
	}

	if err := s.store.PutSites(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *SyncService) syncBuildings(ctx context.Context, cred ports.Credential) (int, error) {
	payload, err := s.fetch(ctx, func(ctx context.Context) ([]map[string]interface{}, error) {
		return s.api.GetBuildings(ctx, cred)
	})
	if err != nil {
		return 0, err
	}

	records := make([]facility.Building, 0, len(payload))
	for _, p := range payload {
		record, ok := facility.BuildingFromPayload(p)
		if !ok {
			s.logger.Debug("Skipping building record with missing fields", zap.Any("id", p["id"]))
			continue
		}
		records = append(records, *record)
	}

	if err := s.store.PutBuildings(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *SyncService) syncFloors(ctx context.Context, cred ports.Credential) (int, error) {
	payload, err := s.fetch(ctx, func(ctx context.Context) ([]map[string]interface{}, error) {
		return s.api.GetFloors(ctx, cred)
	})
	if err != nil {
		return 0, err
	}

	records := make([]facility.Floor, 0, len(payload))
	for _, p := range payload {
		record, ok := facility.FloorFromPayload(p)
		if !ok {
			s.logger.Debug("Skipping floor record with missing fields", zap.Any("id", p["id"]))
			continue
		}
		records = append(records, *record)
	}

	if err := s.store.PutFloors(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// fetch runs one upstream read under the sync retry policy. The policy
// sits above the client's own 401 handling, so transient upstream
// failures get a fresh fetch rather than failing the whole run.
func (s *SyncService) fetch(ctx context.Context, op func(context.Context) ([]map[string]interface{}, error)) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	err := retry.Do(ctx, s.fetchPolicy, func(ctx context.Context) error {
		var opErr error
		out, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// abort logs the failed stage and emits the failure event before
// handing the error back to the caller.
func (s *SyncService) abort(ctx context.Context, tenantID, stage string, err error) error {
	s.logger.Error("Tenant sync aborted",
		zap.String("tenantID", tenantID),
		zap.String("stage", stage),
		zap.Error(err),
	)
	s.metrics.RecordError(ctx, pkgerrors.TypeOf(err))
	if pubErr := s.publisher.Publish(ctx, events.NewSyncFailed(tenantID, stage, err.Error(), time.Now())); pubErr != nil {
		s.logger.Warn("Failed to publish sync failure event", zap.Error(pubErr))
	}
	return err
}
