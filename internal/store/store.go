// Package store enumerates the source files a run operates on.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// StdinPath names standard input among the sources.
const StdinPath = "-"

// ListOptions controls how sources are enumerated.
type ListOptions struct {
	Roots      []string
	Extensions []string
	Gitignore  bool
}

// ListResult contains source paths and non-fatal warnings.
type ListResult struct {
	Sources  []string
	Warnings []error
}

// ListSources expands opts.Roots into source files. Files named explicitly are
// always kept; directories are walked and filtered by extension, hidden
// directories and .gitignore rules.
func ListSources(opts ListOptions) (ListResult, error) {
	if len(opts.Roots) == 0 {
		return ListResult{}, errors.New("at least one source path is required")
	}

	var result ListResult
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result.Sources = append(result.Sources, path)
	}

	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	for _, root := range opts.Roots {
		if root == StdinPath {
			add(root)
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			return result, fmt.Errorf("stat source: %w", err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		if err := walkRoot(root, exts, opts.Gitignore, add, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func walkRoot(root string, exts map[string]struct{}, useGitignore bool, add func(string), result *ListResult) error {
	root = filepath.Clean(root)
	ignorers := make(map[string]gitignore.IgnoreParser)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if useGitignore && isIgnored(ignorers, root, path) {
				return filepath.SkipDir
			}
			if useGitignore {
				loadIgnoreFile(ignorers, path, result)
			}
			return nil
		}

		if _, ok := exts[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		if useGitignore && isIgnored(ignorers, root, path) {
			return nil
		}
		add(path)
		return nil
	})
}

func loadIgnoreFile(ignorers map[string]gitignore.IgnoreParser, dir string, result *ListResult) {
	file := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(file); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			result.Warnings = append(result.Warnings, fmt.Errorf("stat %s: %w", file, err))
		}
		return
	}
	compiled, err := gitignore.CompileIgnoreFile(file)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Errorf("compile %s: %w", file, err))
		return
	}
	ignorers[dir] = compiled
}

// isIgnored checks path against the .gitignore of every directory between
// root and the path itself.
func isIgnored(ignorers map[string]gitignore.IgnoreParser, root, path string) bool {
	dir := filepath.Dir(path)
	for {
		if ignorer, ok := ignorers[dir]; ok {
			rel, err := filepath.Rel(dir, path)
			if err == nil && ignorer.MatchesPath(filepath.ToSlash(rel)) {
				return true
			}
		}
		if dir == root {
			return false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}
