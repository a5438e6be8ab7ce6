// Package rewriter turns printf-style calls into streaming-logger calls.
//
// A statement such as
//
//	printout(INFO,"Mgr","+++ Value = %d mm",x);
//
// is split into its call head, format string and values, the format string is
// cut on its conversion specifiers, and literals and values are interleaved
// with the stream-append operator:
//
//	LOG(INFO) << "Mgr" << ": " << "+++ Value = " << x << " mm";
//
// Everything here is textual: no expression is parsed or evaluated.
package rewriter

import (
	"strings"
	"unicode"

	"printfmt/internal/model"
	"printfmt/internal/parser"
)

const (
	appendOp     = " << "
	emptyLiteral = `""`
	sourceSep    = `": "`
)

// Split breaks a statement into call head, format string and values.
func Split(stmt model.Statement, opts *model.Options) (model.Arguments, error) {
	body := strings.TrimRightFunc(stmt.Text, unicode.IsSpace)
	body = strings.TrimSuffix(body, opts.Terminator)
	body = strings.TrimRightFunc(body, unicode.IsSpace)
	body = strings.TrimSuffix(body, ")")

	idx := parser.MarkerIndex(body, opts.StartMarker)
	if idx < 0 {
		return model.Arguments{}, &model.MalformedArgumentListError{Line: stmt.Line, Statement: stmt.Text}
	}
	prefix := body[:idx]
	inner := body[idx+len(opts.StartMarker):]

	tokens, balanced := splitTopLevel(inner)
	if !balanced {
		return model.Arguments{}, &model.MalformedArgumentListError{Line: stmt.Line, Statement: stmt.Text}
	}
	if opts.SplitMode == model.SplitNaive {
		tokens = strings.Split(strings.ReplaceAll(inner, "+", ""), ",")
	}

	var args model.Arguments
	pos := 0
	if opts.HasLevel {
		args.Level = strings.TrimSpace(tokens[pos])
		pos++
	}
	if opts.HasSource && pos < len(tokens) {
		args.Source = strings.TrimSpace(tokens[pos])
		pos++
	}
	if pos >= len(tokens) || strings.TrimSpace(tokens[pos]) == "" {
		return model.Arguments{}, &model.MalformedArgumentListError{
			Line:      stmt.Line,
			Statement: stmt.Text,
			Tokens:    len(tokens),
		}
	}

	args.Format = strings.TrimSpace(tokens[pos])
	if opts.SplitMode != model.SplitNaive {
		args.Format = mergeLiterals(args.Format)
	}
	for _, raw := range tokens[pos+1:] {
		value := StripSuffix(strings.TrimSpace(raw), opts.ValueSuffix)
		if value == "" {
			continue
		}
		args.Values = append(args.Values, value)
	}

	args.Head = buildHead(prefix, args, opts)
	return args, nil
}

func buildHead(prefix string, args model.Arguments, opts *model.Options) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(opts.CallName)
	if opts.HasLevel {
		b.WriteString("(" + args.Level + ")")
	}
	b.WriteString(appendOp)
	if opts.HasSource && opts.KeepSource && args.Source != "" {
		b.WriteString(args.Source + appendOp + sourceSep + appendOp)
	}
	return b.String()
}

// Fragments strips the quotes and leading whitespace of a format string and
// cuts it on the specifier pattern. N specifiers give N+1 fragments; any of
// them may be empty.
func Fragments(format string, opts *model.Options) []string {
	text := strings.TrimLeftFunc(stripQuotes(format), unicode.IsSpace)
	return opts.Specifier().Split(text, -1)
}

// Interleave merges fragments and values pairwise, fragment first. When one
// sequence is shorter its missing positions are skipped.
func Interleave(fragments, values []string) []string {
	n := max(len(fragments), len(values))
	out := make([]string, 0, len(fragments)+len(values))
	for i := 0; i < n; i++ {
		if i < len(fragments) {
			out = append(out, fragments[i])
		}
		if i < len(values) {
			out = append(out, values[i])
		}
	}
	return out
}

// Rewrite renders the right-hand side of the streaming call for format and
// values, terminator included, and reports how many literal fragments the
// format produced.
func Rewrite(format string, values []string, opts *model.Options) (string, int) {
	fragments := Fragments(format, opts)
	quoted := make([]string, len(fragments))
	for i, frag := range fragments {
		quoted[i] = `"` + frag + `"`
	}
	joined := strings.Join(Interleave(quoted, values), appendOp) + opts.Terminator
	return Cleanup(joined, opts.Terminator), len(fragments)
}

// Cleanup removes appends of empty literals left behind by specifiers at the
// edges of a format or next to each other. It runs to a fixpoint, so applying
// it again changes nothing.
func Cleanup(text, terminator string) string {
	inner := "<< " + emptyLiteral + " <<"
	tail := appendOp + emptyLiteral + terminator
	for {
		next := strings.ReplaceAll(text, inner, "<<")
		next = strings.ReplaceAll(next, tail, terminator)
		if next == text {
			return text
		}
		text = next
	}
}

// Convert rewrites a single statement.
func Convert(stmt model.Statement, opts *model.Options) model.Result {
	result := model.Result{
		Line:     stmt.Line,
		EndLine:  stmt.EndLine,
		Original: stmt.Text,
	}

	args, err := Split(stmt, opts)
	if err != nil {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	if len(args.Values) == 0 {
		format := args.Format
		if strings.HasPrefix(format, `"`) {
			if !checkBalance(&result, stmt, len(Fragments(format, opts)), 0, opts) {
				return result
			}
		} else {
			format = StripSuffix(format, opts.ValueSuffix)
		}
		result.Rewritten = Cleanup(args.Head+format+opts.Terminator, opts.Terminator)
		return result
	}

	body, fragments := Rewrite(args.Format, args.Values, opts)
	if !checkBalance(&result, stmt, fragments, len(args.Values), opts) {
		return result
	}
	result.Rewritten = Cleanup(args.Head+body, opts.Terminator)
	return result
}

// checkBalance records an UnbalancedInterleaveError when fragments and values
// differ by more than one: as a warning, or under Strict as the statement
// error. It reports whether the rewrite may proceed.
func checkBalance(result *model.Result, stmt model.Statement, fragments, values int, opts *model.Options) bool {
	if diff := fragments - values; diff <= 1 && diff >= -1 {
		return true
	}
	warn := &model.UnbalancedInterleaveError{
		Line:      stmt.Line,
		Statement: stmt.Text,
		Fragments: fragments,
		Values:    values,
	}
	if opts.Strict {
		result.Err = warn
		result.Error = warn.Error()
		return false
	}
	result.Warnings = append(result.Warnings, warn.Error())
	return true
}

// StripSuffix drops a literal method-call suffix such as ".c_str()" from a
// value token. It is a textual heuristic, not a type-aware conversion.
func StripSuffix(value, suffix string) string {
	if suffix == "" {
		return value
	}
	return strings.TrimSuffix(value, suffix)
}
