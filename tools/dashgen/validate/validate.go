// Package validate checks generated dashboards and rules for PromQL syntax
// errors and references to metrics the service does not export.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/watchlist/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings
// are reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation produced no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Expr parses a PromQL expression and checks every selected metric name
// against known. where prefixes each finding.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: parsing %q: %v", where, expr, err))
		return res
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !isKnown(vs.Name, known) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown metric %q", where, vs.Name))
		}
		return nil
	})

	return res
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// panelJSON is the subset of the Grafana panel model validation reads.
type panelJSON struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
	Panels []panelJSON `json:"panels"`
}

// Dashboard validates every panel query in dash, including panels nested
// in rows. Panels without queries are reported as warnings.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return res
	}

	var model struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &model); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("reading dashboard model: %v", err))
		return res
	}

	for _, p := range model.Panels {
		res.merge(panel(p, known))
	}
	return res
}

func panel(p panelJSON, known map[string]bool) Result {
	var res Result

	if p.Type == "row" {
		for _, inner := range p.Panels {
			res.merge(panel(inner, known))
		}
		return res
	}

	if len(p.Targets) == 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("panel %q has no queries", p.Title))
		return res
	}
	for i, t := range p.Targets {
		res.merge(Expr(fmt.Sprintf("panel %q target %d", p.Title, i), t.Expr, known))
	}
	return res
}

// Rules validates every rule expression in cr. Alert rules without a
// severity label are reported as warnings.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			res.merge(Expr(fmt.Sprintf("rule %s/%s", g.Name, name), r.Expr, known))
			if r.Alert != "" && r.Labels["severity"] == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("alert %s has no severity", r.Alert))
			}
		}
	}
	return res
}
