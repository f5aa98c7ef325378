package main

import "errors"

// KnownMetrics is the set of metric names exported by watchlist plus
// recording rule names referenced in dashboards and alerts. Histogram
// series suffixes (_bucket, _sum, _count) resolve to their base name.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"watchlist_http_request_duration_seconds": true,
	"watchlist_http_requests_total":           true,

	// Health metrics.
	"watchlist_healthcheck_status": true,
	"watchlist_readiness_status":   true,

	// Run metrics.
	"watchlist_runs_total":           true,
	"watchlist_run_duration_seconds": true,
	"watchlist_last_run_timestamp":   true,

	// Item metrics.
	"watchlist_items_processed_total":       true,
	"watchlist_item_changes_total":          true,
	"watchlist_item_errors_total":           true,
	"watchlist_price_points_appended_total": true,

	// Source metrics.
	"watchlist_source_pages_total":              true,
	"watchlist_source_request_duration_seconds": true,
	"watchlist_robot_detections_total":          true,

	// Digest metrics.
	"watchlist_digests_sent_total":        true,
	"watchlist_delivery_duration_seconds": true,
	"watchlist_delivery_failures_total":   true,

	// Recording rules.
	"watchlist:http_requests:rate5m":   true,
	"watchlist:http_errors:rate5m":     true,
	"watchlist:runs_failed:rate5m":     true,
	"watchlist:items_processed:rate5m": true,
	"watchlist:item_errors:rate5m":     true,
	"watchlist:source_pages:rate5m":    true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
