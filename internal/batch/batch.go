// Package batch runs the statement rewriter over a set of sources.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"printfmt/internal/model"
	"printfmt/internal/parser"
	"printfmt/internal/rewriter"
	"printfmt/internal/store"
)

// Options defines a batch run.
type Options struct {
	Sources []string
	Rewrite *model.Options // compiled by Run before any worker starts
	Apply   bool
	Jobs    int       // worker limit; 0 or less runs one worker
	Stdin   io.Reader // read for store.StdinPath
	Stdout  io.Writer // receives the applied text of store.StdinPath
	Logger  *zap.Logger
}

// Run rewrites every source and returns one result per source in input
// order. A source that fails is reported in its FileResult and does not stop
// the others; the returned error is only set when ctx is cancelled.
func Run(ctx context.Context, opts Options) ([]model.FileResult, error) {
	if opts.Rewrite == nil {
		return nil, errors.New("batch: rewrite options are required")
	}
	// workers share opts.Rewrite read-only from here on
	if err := opts.Rewrite.Compile(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	results := make([]model.FileResult, len(opts.Sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))

	for i, path := range opts.Sources {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = processSource(path, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed reports whether any source hit a fatal error, or, when strict is
// set, whether any statement failed.
func Failed(files []model.FileResult, strict bool) bool {
	for _, f := range files {
		if f.Err != nil {
			return true
		}
		if !strict {
			continue
		}
		if _, _, failed := f.Counts(); failed > 0 {
			return true
		}
	}
	return false
}

func processSource(path string, opts Options) model.FileResult {
	logger := opts.Logger.With(zap.String("path", path))
	result := model.FileResult{Path: path}

	data, mode, err := readSource(path, opts.Stdin)
	if err != nil {
		logger.Error("read source", zap.Error(err))
		result.Err = err
		result.Error = err.Error()
		return result
	}

	var out []string
	err = parser.IterateSegments(bytes.NewReader(data), opts.Rewrite, func(seg model.Segment) error {
		if !seg.IsStatement() {
			out = append(out, seg.Text)
			return nil
		}
		r := rewriter.Convert(*seg.Statement, opts.Rewrite)
		r.Path = path
		report(logger, r)
		result.Results = append(result.Results, r)
		if r.OK() {
			out = append(out, r.Rewritten)
		} else {
			out = append(out, seg.Statement.Lines...)
		}
		return nil
	})
	if err != nil {
		var unterminated *model.UnterminatedStatementError
		if errors.As(err, &unterminated) {
			result.Results = append(result.Results, model.Result{
				Path:     path,
				Line:     unterminated.Line,
				EndLine:  unterminated.Line,
				Original: unterminated.Partial,
				Error:    err.Error(),
				Err:      err,
			})
		}
		logger.Error("source skipped", zap.Error(err))
		result.Err = err
		result.Error = err.Error()
		return result
	}
	logger.Debug("source scanned", zap.Int("statements", len(result.Results)))

	if !opts.Apply {
		return result
	}

	updated := assemble(out, data)
	changed := !bytes.Equal(updated, data)
	if !changed && path != store.StdinPath {
		return result
	}
	if err := writeSource(path, updated, mode, opts.Stdout); err != nil {
		logger.Error("write source", zap.Error(err))
		result.Err = err
		result.Error = err.Error()
		return result
	}
	result.Changed = changed
	if changed {
		logger.Debug("source updated")
	}
	return result
}

func report(logger *zap.Logger, r model.Result) {
	for _, warning := range r.Warnings {
		logger.Warn("statement rewritten with warnings", zap.Int("line", r.Line), zap.String("warning", warning))
	}
	if r.Err != nil {
		logger.Warn("statement left unchanged", zap.Int("line", r.Line), zap.Error(r.Err))
	}
}

func readSource(path string, stdin io.Reader) ([]byte, os.FileMode, error) {
	if path == store.StdinPath {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, 0, fmt.Errorf("read stdin: %w", err)
		}
		return data, 0, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("stat source file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read source file: %w", err)
	}
	return data, info.Mode().Perm(), nil
}

// assemble joins lines with the line ending used by original and keeps its
// trailing newline, if any.
func assemble(lines []string, original []byte) []byte {
	eol := "\n"
	if bytes.Contains(original, []byte("\r\n")) {
		eol = "\r\n"
	}
	text := strings.Join(lines, eol)
	if len(lines) > 0 && bytes.HasSuffix(original, []byte("\n")) {
		text += eol
	}
	return []byte(text)
}

func writeSource(path string, data []byte, mode os.FileMode, stdout io.Writer) error {
	if path == store.StdinPath {
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write source file: %w", err)
	}
	return nil
}
