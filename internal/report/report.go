// Package report renders run summaries and history for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mortie23/tptload/internal/history"
	"github.com/mortie23/tptload/internal/tui"
	"github.com/mortie23/tptload/pkg/tptload"
)

// RenderSummary writes one row per table followed by the summary line.
func RenderSummary(w io.Writer, summary tptload.RunSummary, color bool) {
	if len(summary.Outcomes) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "File", "Status", "Failed Stage", "Rows Sent", "Rows Applied", "Duration"})

		for _, o := range summary.Outcomes {
			var sent, applied *int64
			if o.Metrics != nil {
				sent, applied = o.Metrics.RowsSent, o.Metrics.RowsApplied
			}
			t.AppendRow(table.Row{
				o.Unit.Table,
				o.Unit.File.Path,
				status(o.Success, color),
				string(o.FailedStage),
				count(sent),
				count(applied),
				duration(o.Duration),
			})
		}
		t.Render()
	}

	for _, f := range summary.Skipped {
		fmt.Fprintf(w, "%s skipped %s (no table mapping)\n", tui.Paint(tui.WarningStyle, tui.SymbolBullet, color), f.Path)
	}
	if summary.Interrupted {
		fmt.Fprintln(w, tui.Paint(tui.WarningStyle, "Run interrupted before all tables were processed", color))
	}

	line := summary.String()
	switch {
	case summary.Failed > 0:
		line = tui.Paint(tui.ErrorStyle, line, color)
	case summary.Processed > 0:
		line = tui.Paint(tui.SuccessStyle, line, color)
	}
	fmt.Fprintln(w, line)
}

// RenderJSON writes the summary as indented JSON.
func RenderJSON(w io.Writer, summary tptload.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// RenderHistory lists recorded runs, newest first.
func RenderHistory(w io.Writer, runs []history.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run ID", "Started", "Duration", "Processed", "Succeeded", "Failed", "Skipped", "Interrupted"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration(r.FinishedAt.Sub(r.StartedAt)),
			r.Processed,
			r.Succeeded,
			r.Failed,
			r.Skipped,
			yesNo(r.Interrupted),
		})
	}
	t.Render()
	fmt.Fprintf(w, "(%d runs)\n", len(runs))
}

// RenderTableLoads lists the per-table outcomes of one recorded run.
func RenderTableLoads(w io.Writer, loads []history.TableLoadRecord, color bool) {
	if len(loads) == 0 {
		fmt.Fprintln(w, "No tables recorded for this run.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "File", "Status", "Failed Stage", "Rows Sent", "Rows Applied", "Duration"})
	for _, l := range loads {
		t.AppendRow(table.Row{
			l.Table,
			l.FilePath,
			status(l.Success, color),
			string(l.FailedStage),
			count(l.RowsSent),
			count(l.RowsApplied),
			duration(l.Duration),
		})
	}
	t.Render()
}

func status(ok bool, color bool) string {
	if ok {
		return tui.Paint(tui.SuccessStyle, tui.SymbolCheck+" loaded", color)
	}
	return tui.Paint(tui.ErrorStyle, tui.SymbolCross+" failed", color)
}

func count(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}

func duration(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
