package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"printfmt/internal/model"
)

const (
	minCellWidth = 16
	// border and padding of a three-column rounded table
	tableOverhead = 10
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	return tw
}

func writeResultsTable(w io.Writer, files []model.FileResult, opts Options) error {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
	})

	if opts.Header {
		tw.AppendHeader(table.Row{"Location", "Original", "Rewritten"})
	}

	results := Flatten(files)
	cell := cellWidth(results, opts.Width)
	for _, r := range results {
		rewritten := strings.TrimSpace(r.Rewritten)
		if r.Error != "" {
			rewritten = "error: " + r.Error
		}
		tw.AppendRow(table.Row{
			Location("", r),
			clip(strings.TrimSpace(r.Original), cell),
			clip(rewritten, cell),
		})
	}

	if len(results) == 0 {
		tw.AppendRow(table.Row{"-", "(no statements)", "-"})
	}

	_ = tw.Render()
	return nil
}

// cellWidth splits the space left after the location column between the two
// statement columns. Zero disables clipping.
func cellWidth(results []model.Result, width int) int {
	if width <= 0 {
		return 0
	}
	loc := 0
	for _, r := range results {
		loc = max(loc, runewidth.StringWidth(Location("", r)))
	}
	return max((width-loc-tableOverhead)/2, minCellWidth)
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// WriteSummary writes one row per source with its statement counts.
func WriteSummary(w io.Writer, files []model.FileResult, includeHeader bool) error {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 6, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Source", "Statements", "Rewritten", "Warnings", "Errors", "Status"})
	}

	var total, totalRewritten, totalWarned, totalFailed int
	for _, f := range files {
		rewritten, warned, failed := f.Counts()
		tw.AppendRow(table.Row{f.Path, len(f.Results), rewritten, warned, failed, status(f)})
		total += len(f.Results)
		totalRewritten += rewritten
		totalWarned += warned
		totalFailed += failed
	}

	if len(files) == 0 {
		tw.AppendRow(table.Row{"(no sources)", 0, 0, 0, 0, "-"})
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("%d sources", len(files)), total, totalRewritten, totalWarned, totalFailed, ""})

	_ = tw.Render()
	return nil
}

func status(f model.FileResult) string {
	switch {
	case f.Err != nil:
		return "failed"
	case f.Changed:
		return "updated"
	default:
		return "-"
	}
}

// WriteDialects lists the registered dialect presets.
func WriteDialects(w io.Writer, dialects []model.Options, includeHeader bool) error {
	tw := newTable(w)
	if includeHeader {
		tw.AppendHeader(table.Row{"Dialect", "Marker", "Call", "Level", "Source", "Suffix"})
	}
	for _, d := range dialects {
		tw.AppendRow(table.Row{d.Dialect, d.StartMarker, d.CallName, yesNo(d.HasLevel), yesNo(d.HasSource), d.ValueSuffix})
	}
	_ = tw.Render()
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
