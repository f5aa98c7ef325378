package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PagesRate returns a timeseries panel showing wishlist pages fetched per
// minute.
func PagesRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pages / min").
		Description("Wishlist pages fetched from the source per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`watchlist:source_pages:rate5m * 60`, "pages/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SourceLatency returns a timeseries panel showing the p95 page request
// duration.
func SourceLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Page Latency (p95)").
		Description("95th percentile wishlist page request duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(p95("watchlist_source_request_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RobotDetections returns a stat panel showing anti-scraping responses in
// the last 24 hours.
func RobotDetections() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Robot Checks (24h)").
		Description("Anti-scraping responses from the source in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`sum(increase(watchlist_robot_detections_total[24h]))`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
