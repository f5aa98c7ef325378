package metrics

import (
	"testing"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, RunsTotal)
	assert.NotNil(t, RunDuration)
	assert.NotNil(t, LastRunTimestamp)
	assert.NotNil(t, ItemsProcessedTotal)
	assert.NotNil(t, ItemChangesTotal)
	assert.NotNil(t, ItemErrorsTotal)
	assert.NotNil(t, PricePointsAppendedTotal)
	assert.NotNil(t, SourcePagesTotal)
	assert.NotNil(t, SourceRequestDuration)
	assert.NotNil(t, RobotDetectionsTotal)
	assert.NotNil(t, DigestsSentTotal)
	assert.NotNil(t, DeliveryDuration)
	assert.NotNil(t, DeliveryFailuresTotal)
	assert.NotNil(t, HealthcheckStatus)
	assert.NotNil(t, ReadinessStatus)
}

func TestItemChangesTotal_Labels(t *testing.T) {
	t.Parallel()

	c := ItemChangesTotal.WithLabelValues("metrics_test_category")
	before := ptestutil.ToFloat64(c)
	c.Inc()
	assert.InDelta(t, before+1, ptestutil.ToFloat64(c), 0.001)
}
