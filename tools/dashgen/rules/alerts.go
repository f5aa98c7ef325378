package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// watchlist operational monitoring.
func AlertRules() PrometheusRule {
	return newPrometheusRule("watchlist-alerts",
		alert("WatchlistDown",
			`absent(up{job="watchlist"})`, "2m", "critical",
			"Watchlist is down",
			"The watchlist job has been absent for more than 2 minutes."),
		alert("WatchlistStoreUnreachable",
			`watchlist_readiness_status == 0`, "2m", "critical",
			"Watchlist cannot reach its history store",
			"The readiness probe has been failing for more than 2 minutes."),
		alert("WatchlistHighErrorRate",
			`watchlist:http_errors:rate5m / watchlist:http_requests:rate5m > 0.05`, "5m", "warning",
			"High API error rate on watchlist",
			"More than 5% of API requests are returning 5xx errors over the last 5 minutes."),
		alert("WatchlistRunsFailing",
			`watchlist:runs_failed:rate5m > 0`, "15m", "warning",
			"Watchlist {{ $labels.watchlist }} runs are failing",
			"Runs have ended failed or aborted for more than 15 minutes."),
		alert("WatchlistRunStale",
			`time() - watchlist_last_run_timestamp > 86400`, "30m", "warning",
			"Watchlist {{ $labels.watchlist }} has not completed a run in a day",
			"No run of this watchlist has completed in the last 24 hours."),
		alert("WatchlistRobotDetected",
			`increase(watchlist_robot_detections_total[30m]) > 0`, "0m", "warning",
			"Source is serving anti-scraping pages",
			"The wishlist source answered with a robot check in the last 30 minutes. Runs abort until it clears."),
		alert("WatchlistDeliveryFailures",
			`increase(watchlist_delivery_failures_total[5m]) > 0`, "1m", "warning",
			"Digest delivery failures detected",
			"One or more digests failed to send through the email provider."),
	)
}
