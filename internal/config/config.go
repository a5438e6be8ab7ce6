// Package config loads printfmt settings from .printfmt.toml or .printfmt.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"printfmt/internal/model"
)

// FileNames lists the config file names searched for, in priority order.
var FileNames = []string{".printfmt.toml", ".printfmt.yaml", ".printfmt.yml"}

// DefaultExtensions are the source file extensions scanned in directories.
var DefaultExtensions = []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hh", ".hpp", ".hxx", ".ipp"}

// File mirrors the config file layout. Unset keys keep the dialect defaults.
type File struct {
	Dialect          string   `toml:"dialect" yaml:"dialect"`
	StartMarker      *string  `toml:"start_marker" yaml:"start_marker"`
	CallName         *string  `toml:"call_name" yaml:"call_name"`
	Terminator       *string  `toml:"terminator" yaml:"terminator"`
	SpecifierPattern *string  `toml:"specifier_pattern" yaml:"specifier_pattern"`
	ValueSuffix      *string  `toml:"value_suffix" yaml:"value_suffix"`
	HasLevel         *bool    `toml:"has_level" yaml:"has_level"`
	HasSource        *bool    `toml:"has_source" yaml:"has_source"`
	KeepSource       *bool    `toml:"keep_source" yaml:"keep_source"`
	SplitMode        *string  `toml:"split_mode" yaml:"split_mode"`
	Strict           *bool    `toml:"strict" yaml:"strict"`
	Extensions       []string `toml:"extensions" yaml:"extensions"`
	Jobs             int      `toml:"jobs" yaml:"jobs"`
	NoGitignore      bool     `toml:"no_gitignore" yaml:"no_gitignore"`
}

// Config is the resolved configuration before command-line overrides.
type Config struct {
	Path       string // empty when no file was found
	Options    model.Options
	Extensions []string
	Jobs       int
	Gitignore  bool
}

// Find looks for a config file in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the config file at path. The format follows the extension;
// unknown keys are rejected.
func Load(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.Decode(string(data), &f)
		if err != nil {
			return f, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return f, fmt.Errorf("decode %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return f, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return f, fmt.Errorf("unsupported config format: %s", path)
	}
	return f, nil
}

// Resolve builds the configuration from the dialect preset and the config
// file. An explicit path must exist; otherwise one is searched for from
// workDir. A non-empty dialect wins over the one named in the file.
func Resolve(path, workDir, dialect string) (Config, error) {
	var f File
	if path == "" {
		found, ok, err := Find(workDir)
		if err != nil {
			return Config{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		f = loaded
	}

	if dialect == "" {
		dialect = f.Dialect
	}
	opts, err := model.NewOptions(dialect)
	if err != nil {
		return Config{}, err
	}
	f.Apply(&opts)

	cfg := Config{
		Path:       path,
		Options:    opts,
		Extensions: DefaultExtensions,
		Jobs:       f.Jobs,
		Gitignore:  !f.NoGitignore,
	}
	if len(f.Extensions) > 0 {
		cfg.Extensions = NormalizeExtensions(f.Extensions)
	}
	return cfg, nil
}

// Apply overlays the keys set in f onto opts.
func (f File) Apply(opts *model.Options) {
	setString(&opts.StartMarker, f.StartMarker)
	setString(&opts.CallName, f.CallName)
	setString(&opts.Terminator, f.Terminator)
	setString(&opts.SpecifierPattern, f.SpecifierPattern)
	setString(&opts.ValueSuffix, f.ValueSuffix)
	setBool(&opts.HasLevel, f.HasLevel)
	setBool(&opts.HasSource, f.HasSource)
	setBool(&opts.KeepSource, f.KeepSource)
	setBool(&opts.Strict, f.Strict)
	if f.SplitMode != nil {
		opts.SplitMode = model.SplitMode(strings.ToLower(*f.SplitMode))
	}
}

// NormalizeExtensions lowercases extensions and adds the leading dot.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
