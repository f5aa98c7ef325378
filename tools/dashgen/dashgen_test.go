package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/watchlist/tools/dashgen/dashboards"
	"github.com/donaldgifford/watchlist/tools/dashgen/rules"
	"github.com/donaldgifford/watchlist/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	dash, err := dashboards.BuildOverview().Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, "watchlist-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Watchlist Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	assert.Len(t, dash.Panels, 6)

	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 19, totalPanels)

	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "watchlist-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "watchlist-recording-rules", group.Name)

	expectedRecords := []string{
		"watchlist:http_requests:rate5m",
		"watchlist:http_errors:rate5m",
		"watchlist:runs_failed:rate5m",
		"watchlist:items_processed:rate5m",
		"watchlist:item_errors:rate5m",
		"watchlist:source_pages:rate5m",
	}
	require.Len(t, group.Rules, len(expectedRecords))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.True(t, KnownMetrics[rule.Record], "%s missing from KnownMetrics", rule.Record)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "watchlist-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "watchlist-alerts", group.Name)

	expectedAlerts := []string{
		"WatchlistDown",
		"WatchlistStoreUnreachable",
		"WatchlistHighErrorRate",
		"WatchlistRunsFailing",
		"WatchlistRunStale",
		"WatchlistRobotDetected",
		"WatchlistDeliveryFailures",
	}
	require.Len(t, group.Rules, len(expectedAlerts))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, run(&out, Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}, false))

	data, err := os.ReadFile(filepath.Join(dir, "grafana", "data", "watchlist-overview.json"))
	require.NoError(t, err)
	var dash struct {
		UID string `json:"uid"`
	}
	require.NoError(t, json.Unmarshal(data, &dash))
	assert.Equal(t, "watchlist-overview", dash.UID)

	for _, name := range []string{"watchlist-recording-rules.yaml", "watchlist-alerts.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, "prometheus", name))
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(string(data), generatedHeader), name)

		var cr rules.PrometheusRule
		require.NoError(t, yaml.Unmarshal(data, &cr), name)
		assert.Equal(t, "PrometheusRule", cr.Kind)
	}

	assert.Equal(t, 3, strings.Count(out.String(), "dashgen: wrote"))
}

func TestRun_ValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, run(&out, Config{OutputDir: dir, RulesEnabled: true}, true))
	assert.Equal(t, "validation passed\n", out.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
