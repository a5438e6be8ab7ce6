package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"printfmt/internal/model"
)

const trailingSpace = " \t\r\n"

// IterateSegments walks r line by line and calls fn for every pass-through
// line and every statement that starts with the marker of opts. A statement
// keeps absorbing lines until its trimmed text ends with the terminator.
// Input that ends mid-statement yields *model.UnterminatedStatementError.
func IterateSegments(r io.Reader, opts *model.Options, fn func(model.Segment) error) error {
	scanner := newScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if MarkerIndex(line, opts.StartMarker) < 0 {
			if err := fn(model.Segment{Line: lineNo, Text: line}); err != nil {
				return err
			}
			continue
		}

		stmt := &model.Statement{Line: lineNo, Lines: []string{line}}
		text := strings.TrimRight(line, trailingSpace)
		for !strings.HasSuffix(strings.TrimSpace(text), opts.Terminator) {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("scan source: %w", err)
				}
				return &model.UnterminatedStatementError{Line: stmt.Line, Partial: text}
			}
			lineNo++
			next := scanner.Text()
			stmt.Lines = append(stmt.Lines, next)
			text = strings.TrimRight(text, trailingSpace) + strings.TrimSpace(next)
		}
		stmt.EndLine = lineNo
		stmt.Text = strings.TrimRight(text, trailingSpace)

		if err := fn(model.Segment{Line: stmt.Line, Text: stmt.Text, Statement: stmt}); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan source: %w", err)
	}
	return nil
}

// IterateStatements calls fn for each statement found in r.
func IterateStatements(r io.Reader, opts *model.Options, fn func(model.Statement) error) error {
	return IterateSegments(r, opts, func(seg model.Segment) error {
		if !seg.IsStatement() {
			return nil
		}
		return fn(*seg.Statement)
	})
}

// IterateFile opens path and walks its segments.
func IterateFile(path string, opts *model.Options, fn func(model.Segment) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	return IterateSegments(file, opts, fn)
}

// MarkerIndex returns the index of the first occurrence of marker in line
// that is not the tail of a longer identifier, or -1.
func MarkerIndex(line, marker string) int {
	if marker == "" {
		return -1
	}
	offset := 0
	for {
		idx := strings.Index(line[offset:], marker)
		if idx < 0 {
			return -1
		}
		pos := offset + idx
		if pos == 0 || !isIdentByte(line[pos-1]) || !isIdentByte(marker[0]) {
			return pos
		}
		offset = pos + 1
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Generated sources can carry very long lines.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}
