package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// DigestsSent returns a timeseries panel showing delivered digests per hour
// split by kind.
func DigestsSent() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Digests / hour").
		Description("Digests delivered per hour (changes, errors)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum by (kind) (increase(watchlist_digests_sent_total{job=%q}[1h]))`, Job),
			"{{kind}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// DeliveryFailures returns a timeseries panel showing failed deliveries.
func DeliveryFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Delivery Failures").
		Description("Digest deliveries rejected by the email provider").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`increase(watchlist_delivery_failures_total{job=%q}[5m])`, Job),
			"failures", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// DeliveryDuration returns a timeseries panel showing the p95 email provider
// call duration.
func DeliveryDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Delivery Duration (p95)").
		Description("95th percentile email provider call duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(p95("watchlist_delivery_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
