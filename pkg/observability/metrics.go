package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes application metrics to CloudWatch. A nil client
// disables publishing, so local runs and tests skip the AWS call.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordSyncCounts records the number of records stored per entity type
// by one sync run.
func (m *Metrics) RecordSyncCounts(ctx context.Context, tenantID string, counts map[string]int) {
	if m.client == nil {
		return
	}

	now := time.Now()
	metricData := make([]types.MetricDatum, 0, len(counts))
	for entityType, count := range counts {
		metricData = append(metricData, types.MetricDatum{
			MetricName: aws.String("SyncedRecords"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("Tenant"),
					Value: aws.String(tenantID),
				},
				{
					Name:  aws.String("EntityType"),
					Value: aws.String(entityType),
				},
			},
			Value:     aws.Float64(float64(count)),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(now),
		})
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: metricData,
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		// Metrics are best effort; the sync result stands either way
		m.logger.Warn("Failed to publish sync metrics", zap.Error(err))
	}
}

// RecordUpstreamCall records the latency and status of one upstream API
// request.
func (m *Metrics) RecordUpstreamCall(ctx context.Context, resource string, status int, latency time.Duration) {
	if m.client == nil {
		return
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("UpstreamLatency"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("Resource"),
					Value: aws.String(resource),
				},
				{
					Name:  aws.String("Status"),
					Value: aws.String(strconv.Itoa(status)),
				},
			},
			Value:     aws.Float64(float64(latency.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: metricData,
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("Failed to publish upstream metrics", zap.Error(err))
	}
}

// RecordError records error occurrences by type
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	if m.client == nil {
		return
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("Errors"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("ErrorType"),
					Value: aws.String(errorType),
				},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: metricData,
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("Failed to publish error metric", zap.Error(err))
	}
}
