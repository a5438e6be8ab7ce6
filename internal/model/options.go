package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultSpecifierPattern is a permissive approximation of printf conversion
// specifiers: a percent sign followed by letters, digits, '-' or '_'.
const DefaultSpecifierPattern = `%[-a-zA-Z_0-9]*`

// SplitMode selects how the argument list of a call is tokenized.
type SplitMode string

const (
	// SplitStrict tracks bracket depth and quoted literals.
	SplitStrict SplitMode = "strict"
	// SplitNaive splits on every comma and drops every '+'.
	SplitNaive SplitMode = "naive"
)

// Options configures statement detection and rewriting.
type Options struct {
	Dialect          string    `json:"dialect"`
	StartMarker      string    `json:"start_marker"`
	CallName         string    `json:"call_name"`
	Terminator       string    `json:"terminator"`
	SpecifierPattern string    `json:"specifier_pattern"`
	ValueSuffix      string    `json:"value_suffix"`
	HasLevel         bool      `json:"has_level"`
	HasSource        bool      `json:"has_source"`
	KeepSource       bool      `json:"keep_source"`
	SplitMode        SplitMode `json:"split_mode"`
	Strict           bool      `json:"strict"`

	specifier *regexp.Regexp
}

// Compile validates the options and compiles the specifier pattern.
func (o *Options) Compile() error {
	if o.StartMarker == "" {
		return errors.New("start marker is required")
	}
	if !strings.HasSuffix(o.StartMarker, "(") || o.MarkerName() == "" {
		return fmt.Errorf("start marker %q must be a call name followed by '('", o.StartMarker)
	}
	if o.CallName == "" {
		return errors.New("call name is required")
	}
	if utf8.RuneCountInString(o.Terminator) != 1 {
		return fmt.Errorf("terminator must be a single character, got %q", o.Terminator)
	}
	if o.SpecifierPattern == "" {
		o.SpecifierPattern = DefaultSpecifierPattern
	}
	switch o.SplitMode {
	case "":
		o.SplitMode = SplitStrict
	case SplitStrict, SplitNaive:
	default:
		return fmt.Errorf("unknown split mode: %s", o.SplitMode)
	}

	re, err := regexp.Compile(o.SpecifierPattern)
	if err != nil {
		return fmt.Errorf("compiling specifier pattern %q: %w", o.SpecifierPattern, err)
	}
	if re.MatchString("") {
		return fmt.Errorf("specifier pattern %q matches the empty string", o.SpecifierPattern)
	}
	o.specifier = re
	return nil
}

var defaultSpecifier = regexp.MustCompile(DefaultSpecifierPattern)

// Specifier returns the pattern compiled by Compile, or the default pattern
// for options that were never compiled. It never modifies o.
func (o *Options) Specifier() *regexp.Regexp {
	if o.specifier == nil {
		return defaultSpecifier
	}
	return o.specifier
}

// MarkerName is the call name inside the start marker, without the '('.
func (o *Options) MarkerName() string {
	return strings.TrimSpace(strings.TrimSuffix(o.StartMarker, "("))
}
