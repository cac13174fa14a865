package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// PutMetricDataAPI is the subset of the CloudWatch client used here
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchReporter pushes fanout outcomes to CloudWatch. The fanout worker
// runs in Lambda where nothing scrapes /metrics.
type CloudWatchReporter struct {
	namespace string
	client    PutMetricDataAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewCloudWatchReporter creates a reporter. A nil client disables reporting.
func NewCloudWatchReporter(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchReporter {
	return &CloudWatchReporter{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordFanout sends the delivered count and the run outcome
func (r *CloudWatchReporter) RecordFanout(ctx context.Context, delivered, batches int, err error) {
	if r.client == nil {
		return
	}
	status := statusLabel(err)
	ts := aws.Time(r.now())
	dims := []types.Dimension{{Name: aws.String("Status"), Value: aws.String(status)}}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("FanoutRun"),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  ts,
			},
			{
				MetricName: aws.String("FeedItemsPushed"),
				Value:      aws.Float64(float64(delivered)),
				Unit:       types.StandardUnitCount,
				Timestamp:  ts,
			},
			{
				MetricName: aws.String("FeedBatches"),
				Value:      aws.Float64(float64(batches)),
				Unit:       types.StandardUnitCount,
				Timestamp:  ts,
			},
		},
	}

	// metric loss never fails the fanout
	if _, perr := r.client.PutMetricData(context.WithoutCancel(ctx), input); perr != nil {
		r.logger.Warn("Failed to send fanout metrics", zap.Error(perr))
	}
}

// FanoutRecorder is anything that observes fanout runs
type FanoutRecorder interface {
	RecordFanout(ctx context.Context, delivered, batches int, err error)
}

// FanoutRecorders sends each observation to every recorder in order
type FanoutRecorders []FanoutRecorder

// RecordFanout implements FanoutRecorder
func (rs FanoutRecorders) RecordFanout(ctx context.Context, delivered, batches int, err error) {
	for _, r := range rs {
		if r != nil {
			r.RecordFanout(ctx, delivered, batches, err)
		}
	}
}
