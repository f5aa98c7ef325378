package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/watchlist/internal/engine"
	domain "github.com/donaldgifford/watchlist/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printResult(w io.Writer, r *engine.Result) error {
	if jsonOutput() {
		return outputJSON(w, r)
	}

	tw := newTabWriter(w)
	tw.writef("Run:\t%s\n", r.RunID)
	tw.writef("Watchlist:\t%s\n", r.Watchlist)
	tw.writef("Status:\t%s\n", r.Status)
	if r.DryRun {
		tw.writef("Dry run:\tyes\n")
	}
	tw.writef("Items:\t%d\n", r.Items)
	tw.writef("Saved:\t%d\n", r.Appended)
	tw.writef("Changes:\t%d\n", r.Changes)
	tw.writef("Errors:\t%d\n", r.Errors)
	tw.writef("Pages:\t%d (%s)\n", r.PagesUsed, orDash(string(r.StoppedAt)))
	tw.writef("Digest sent:\t%v\n", r.Sent)
	if r.ErrorsSent {
		tw.writef("Error digest sent:\tyes\n")
	}
	tw.writef("Duration:\t%s\n", r.Duration.Round(time.Millisecond))
	return tw.finish()
}

func printHistory(w io.Writer, h *domain.HistorySummary) error {
	tw := newTabWriter(w)
	tw.writef("Identity:\t%s\n", h.Identity)
	if h.Last != nil && h.Last.Metadata.Title != "" {
		tw.writef("Title:\t%s\n", h.Last.Metadata.Title)
	}
	tw.writef("Observations:\t%d\n", h.Count)
	tw.writef("Lowest:\t%s\n", pointSummary(h.Cheapest))
	tw.writef("Highest:\t%s\n", pointSummary(h.Richest))
	tw.writef("Latest:\t%s\n", pointSummary(h.Last))
	tw.writef("\nOBSERVED\tPRICE\n")
	for i := range h.Points {
		tw.writef("%s\t%s\n",
			h.Points[i].ObservedAt.Local().Format(timeLayout),
			dollars(h.Points[i].Price),
		)
	}
	return tw.finish()
}

func printRunsTable(w io.Writer, runs []domain.Run) error {
	tw := newTabWriter(w)
	tw.writef("ID\tWATCHLIST\tSTATUS\tSTARTED\tITEMS\tCHANGES\tERRORS\tERROR\n")
	for i := range runs {
		r := &runs[i]
		tw.writef("%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.Watchlist,
			r.Status,
			r.StartedAt.Local().Format(timeLayout),
			r.ItemCount,
			r.ChangeCount,
			r.ErrorCount,
			orDash(truncate(r.ErrorText, 40)),
		)
	}
	return tw.finish()
}

func pointSummary(p *domain.PricePoint) string {
	if p == nil {
		return "-"
	}
	return dollars(p.Price) + " on " + p.ObservedAt.Local().Format(timeLayout)
}

func dollars(cents int64) string {
	if cents == 0 {
		return "out of stock"
	}
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
