package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RunsByStatus returns a timeseries panel showing completed runs per hour
// split by final status.
func RunsByStatus() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Runs / hour").
		Description("Completed watchlist runs per hour by final status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum by (status) (increase(watchlist_runs_total{job=%q}[1h]))`, Job),
			"{{status}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// RunDuration returns a timeseries panel showing the p95 run duration per
// watchlist.
func RunDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Duration (p95)").
		Description("95th percentile run duration per watchlist").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(p95("watchlist_run_duration_seconds", "watchlist"), "{{watchlist}}", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ItemsRate returns a timeseries panel showing wishlist items evaluated per
// minute.
func ItemsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Items / min").
		Description("Wishlist items evaluated per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`watchlist:items_processed:rate5m * 60`, "items/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ItemChanges returns a timeseries panel showing item classifications per
// hour split by category.
func ItemChanges() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Price Changes / hour").
		Description("Item classifications per hour by category").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum by (category) (increase(watchlist_item_changes_total{job=%q}[1h]))`, Job),
			"{{category}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ItemErrors returns a timeseries panel showing item evaluation errors per
// minute.
func ItemErrors() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Item Errors / min").
		Description("Items that failed evaluation per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`watchlist:item_errors:rate5m * 60`, "errors/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.1, 1)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PricePointsRate returns a timeseries panel showing history writes per
// minute.
func PricePointsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Price Points / min").
		Description("Price points appended to history per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`rate(watchlist_price_points_appended_total{job=%q}[5m]) * 60`, Job),
			"points/min", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
