package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 配置提案数
	PlacementCount metric.Int64Counter

	// 配置競合の発生件数
	PlacementConflictCount metric.Int64Counter

	// ステート遷移数
	StateTransitionCount metric.Int64Counter

	// ページ使用スペースの分布
	PageUtilization metric.Int64Gauge

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	placementCount, err := meter.Int64Counter(
		"placements_total",
		metric.WithDescription("Total number of placement operations"),
	)
	if err != nil {
		return nil, err
	}

	placementConflictCount, err := meter.Int64Counter(
		"placement_conflicts_total",
		metric.WithDescription("Total number of placement conflicts"),
	)
	if err != nil {
		return nil, err
	}

	stateTransitionCount, err := meter.Int64Counter(
		"state_transitions_total",
		metric.WithDescription("Total number of state transitions"),
	)
	if err != nil {
		return nil, err
	}

	pageUtilization, err := meter.Int64Gauge(
		"page_utilization_spaces",
		metric.WithDescription("Spaces used per page"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PlacementCount:         placementCount,
		PlacementConflictCount: placementConflictCount,
		StateTransitionCount:   stateTransitionCount,
		PageUtilization:        pageUtilization,
		RequestCount:           requestCount,
		ResponseTime:           responseTime,
		ErrorCount:             errorCount,
	}, nil
}

// RecordPlacement 配置操作を記録
func (m *Metrics) RecordPlacement(ctx context.Context, operation, contentType string) {
	m.PlacementCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("content_type", contentType),
		),
	)
}

// RecordPlacementConflict 配置競合の発生を記録
func (m *Metrics) RecordPlacementConflict(ctx context.Context, pageID string) {
	m.PlacementConflictCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("page_id", pageID),
		),
	)
}

// RecordStateTransition ステート遷移を記録
func (m *Metrics) RecordStateTransition(ctx context.Context, entity, from, to string) {
	m.StateTransitionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
}

// RecordPageUtilization ページの使用スペース数を記録
func (m *Metrics) RecordPageUtilization(ctx context.Context, pageID string, spacesUsed int64) {
	m.PageUtilization.Record(ctx, spacesUsed,
		metric.WithAttributes(
			attribute.String("page_id", pageID),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
