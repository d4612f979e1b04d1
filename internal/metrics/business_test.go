package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine matches a Prometheus sample by name, a partial label pattern and value.
// The exporter adds otel scope labels, hence the regex.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, bm)
}

func TestBusinessMetrics_SettlementOutcomes(t *testing.T) {
	provider, err := NewProvider("settlement")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "settlement")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "webhook", "settle", "settled")
	bm.RecordOperation(ctx, "webhook", "settle", "settled")
	bm.RecordOperation(ctx, "webhook", "settle", "duplicate")
	bm.RecordOperation(ctx, "webhook", "settle", "unauthorized")
	bm.RecordOperation(ctx, "webhook", "event_archive", "success")

	bm.RecordDuration(ctx, "webhook", "settle", 40*time.Millisecond, "settled")
	bm.RecordDuration(ctx, "webhook", "settle", 70*time.Millisecond, "settled")
	bm.RecordDuration(ctx, "webhook", "settle", 3*time.Millisecond, "duplicate")

	output := scrape(t, provider)

	assertBizMetricLine(t, output, `settlement_operations_total`,
		`domain="webhook".*operation="settle".*status="settled"`, `2`)
	assertBizMetricLine(t, output, `settlement_operations_total`,
		`domain="webhook".*operation="settle".*status="duplicate"`, `1`)
	assertBizMetricLine(t, output, `settlement_operations_total`,
		`domain="webhook".*operation="settle".*status="unauthorized"`, `1`)
	assertBizMetricLine(t, output, `settlement_operations_total`,
		`operation="event_archive".*status="success"`, `1`)
	assertBizMetricLine(t, output, `settlement_operation_duration_seconds_count`,
		`domain="webhook".*operation="settle".*status="settled"`, `2`)
	assertBizMetricLine(t, output, `settlement_operation_duration_seconds_bucket`,
		`operation="settle".*status="duplicate".*le="0.005"`, `1`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	assert.NotPanics(t, func() {
		bm.RecordOperation(context.Background(), "webhook", "settle", "settled")
		bm.RecordDuration(context.Background(), "webhook", "settle", time.Second, "settled")
	})
}
