package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("watchlist-recording-rules",
		Rule{
			Record: "watchlist:http_requests:rate5m",
			Expr:   `sum(rate(watchlist_http_requests_total[5m]))`,
		},
		Rule{
			Record: "watchlist:http_errors:rate5m",
			Expr:   `sum(rate(watchlist_http_requests_total{status=~"5.."}[5m]))`,
		},
		Rule{
			Record: "watchlist:runs_failed:rate5m",
			Expr:   `sum by (watchlist) (rate(watchlist_runs_total{status=~"failed|aborted"}[5m]))`,
		},
		Rule{
			Record: "watchlist:items_processed:rate5m",
			Expr:   `rate(watchlist_items_processed_total[5m])`,
		},
		Rule{
			Record: "watchlist:item_errors:rate5m",
			Expr:   `rate(watchlist_item_errors_total[5m])`,
		},
		Rule{
			Record: "watchlist:source_pages:rate5m",
			Expr:   `rate(watchlist_source_pages_total[5m])`,
		},
	)
}
