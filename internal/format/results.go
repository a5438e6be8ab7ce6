// Package format renders rewrite results for the terminal and for tools.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"printfmt/internal/model"
)

// Output formats accepted by WriteResults.
const (
	FormatPair  = "pair"
	FormatDiff  = "diff"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatTable = "table"
)

// Formats lists the supported output formats.
var Formats = []string{FormatPair, FormatDiff, FormatJSON, FormatJSONL, FormatTable}

// Options tunes terminal rendering.
type Options struct {
	Header bool
	Color  bool
	Width  int // total table width; 0 means unlimited
}

// WriteResults writes the statement results of files to w in the requested
// format.
func WriteResults(w io.Writer, files []model.FileResult, format string, opts Options) error {
	format = strings.ToLower(format)
	switch format {
	case "", FormatPair:
		return writePair(w, files)
	case FormatDiff:
		return writeDiff(w, files, opts.Color)
	case FormatJSON:
		return writeJSON(w, Flatten(files))
	case FormatJSONL:
		return writeJSONL(w, Flatten(files))
	case FormatTable:
		return writeResultsTable(w, files, opts)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Flatten returns the results of all files in order, each tagged with its
// source path.
func Flatten(files []model.FileResult) []model.Result {
	var out []model.Result
	for _, f := range files {
		for _, r := range f.Results {
			r.Path = f.Path
			out = append(out, r)
		}
	}
	if out == nil {
		out = []model.Result{}
	}
	return out
}

// writePair echoes every original statement followed by its rewrite.
func writePair(w io.Writer, files []model.FileResult) error {
	for _, f := range files {
		for _, r := range f.Results {
			if _, err := fmt.Fprintln(w, r.Original); err != nil {
				return err
			}
			if r.Rewritten == "" {
				continue
			}
			if _, err := fmt.Fprintln(w, r.Rewritten); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDiff(w io.Writer, files []model.FileResult, useColor bool) error {
	header := newColor(useColor, color.FgCyan, color.Bold)
	removed := newColor(useColor, color.FgRed)
	added := newColor(useColor, color.FgGreen)
	notice := newColor(useColor, color.FgYellow)

	for _, f := range files {
		for _, r := range f.Results {
			lines := []string{
				header.Sprint(Location(f.Path, r)),
				removed.Sprint("- " + strings.TrimSpace(r.Original)),
			}
			if r.Rewritten != "" {
				lines = append(lines, added.Sprint("+ "+strings.TrimSpace(r.Rewritten)))
			}
			for _, warning := range r.Warnings {
				lines = append(lines, notice.Sprint("! "+warning))
			}
			if r.Error != "" {
				lines = append(lines, notice.Sprint("! "+r.Error))
			}
			if err := writeLines(w, lines); err != nil {
				return err
			}
		}
	}
	return nil
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Location formats the path and line range of a result as path:line or
// path:line-end.
func Location(path string, r model.Result) string {
	if path == "" {
		path = r.Path
	}
	loc := path + ":" + strconv.Itoa(r.Line)
	if r.EndLine > r.Line {
		loc += "-" + strconv.Itoa(r.EndLine)
	}
	return loc
}

func writeJSON(w io.Writer, items []model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeJSONL(w io.Writer, items []model.Result) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
