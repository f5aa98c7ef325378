// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/watchlist/tools/dashgen/panels"
)

// UID is the stable identifier of the overview dashboard.
const UID = "watchlist-overview"

// BuildOverview constructs the Watchlist Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Watchlist Overview").
		Uid(UID).
		Tags([]string{"watchlist"}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthStat()).
		WithPanel(panels.ReadyStat()).
		WithPanel(panels.LastRunAge()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("API").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	b.WithRow(dashboard.NewRowBuilder("Runs").
		WithPanel(panels.RunsByStatus()).
		WithPanel(panels.RunDuration()).
		WithPanel(panels.ItemsRate()))

	b.WithRow(dashboard.NewRowBuilder("Prices").
		WithPanel(panels.ItemChanges()).
		WithPanel(panels.ItemErrors()).
		WithPanel(panels.PricePointsRate()))

	b.WithRow(dashboard.NewRowBuilder("Source").
		WithPanel(panels.PagesRate()).
		WithPanel(panels.SourceLatency()).
		WithPanel(panels.RobotDetections()))

	b.WithRow(dashboard.NewRowBuilder("Delivery").
		WithPanel(panels.DigestsSent()).
		WithPanel(panels.DeliveryFailures()).
		WithPanel(panels.DeliveryDuration()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
