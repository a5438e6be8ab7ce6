// Package model provides the shared types for statement scanning and rewriting.
package model

// Statement is one logical call accumulated from one or more physical lines.
type Statement struct {
	Line    int    // 1-based line where the start marker was seen
	EndLine int    // line holding the terminator
	Text    string // accumulated text, continuation lines trimmed and joined
	Lines   []string
}

// Segment is a unit of a source file as seen by the scanner: either a
// pass-through physical line or a complete statement.
type Segment struct {
	Line      int
	Text      string
	Statement *Statement
}

// IsStatement reports whether the segment holds an accumulated statement.
func (s Segment) IsStatement() bool {
	return s.Statement != nil
}

// Arguments is the argument list of a call split on top-level commas.
type Arguments struct {
	Head   string   // rewritten call head, e.g. `LOG(INFO) << `
	Level  string   // first argument, empty for dialects without a level
	Source string   // source tag, empty for dialects without one
	Format string   // format string token as written
	Values []string // trailing values, trimmed and suffix-stripped
}

// Result is the outcome of rewriting one statement.
type Result struct {
	Path      string   `json:"path"`
	Line      int      `json:"line"`
	EndLine   int      `json:"end_line"`
	Original  string   `json:"original"`
	Rewritten string   `json:"rewritten,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`

	Err error `json:"-"`
}

// OK reports whether the statement was rewritten.
func (r Result) OK() bool {
	return r.Err == nil && r.Rewritten != ""
}

// FileResult collects the statement results of one source.
type FileResult struct {
	Path    string   `json:"path"`
	Results []Result `json:"results"`
	Changed bool     `json:"changed,omitempty"`
	Error   string   `json:"error,omitempty"`

	Err error `json:"-"`
}

// Counts tallies rewritten statements, statements with warnings and
// statements with errors.
func (f FileResult) Counts() (rewritten, warned, failed int) {
	for _, r := range f.Results {
		if r.OK() {
			rewritten++
		}
		if len(r.Warnings) > 0 {
			warned++
		}
		if r.Err != nil {
			failed++
		}
	}
	return rewritten, warned, failed
}
