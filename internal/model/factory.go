package model

import (
	"fmt"
	"sort"
)

const (
	// DialectPrintout rewrites printout(level, source, fmt, ...) into LOG(level) << ...
	DialectPrintout = "printout"
	// DialectPrintf rewrites printf(fmt, ...) into std::cout << ...
	DialectPrintf = "printf"
)

// DialectFactory is a function type that creates the options of a dialect.
type DialectFactory func() Options

var dialects = map[string]DialectFactory{}

func init() {
	RegisterDialect(DialectPrintout, func() Options {
		return Options{
			Dialect:          DialectPrintout,
			StartMarker:      "printout(",
			CallName:         "LOG",
			Terminator:       ";",
			SpecifierPattern: DefaultSpecifierPattern,
			ValueSuffix:      ".c_str()",
			HasLevel:         true,
			HasSource:        true,
			KeepSource:       true,
			SplitMode:        SplitStrict,
		}
	})
	RegisterDialect(DialectPrintf, func() Options {
		return Options{
			Dialect:          DialectPrintf,
			StartMarker:      "printf(",
			CallName:         "std::cout",
			Terminator:       ";",
			SpecifierPattern: DefaultSpecifierPattern,
			ValueSuffix:      ".c_str()",
			SplitMode:        SplitStrict,
		}
	})
}

// RegisterDialect registers a named options preset.
func RegisterDialect(name string, factory DialectFactory) {
	dialects[name] = factory
}

// NewOptions creates the options preset for the named dialect.
func NewOptions(name string) (Options, error) {
	if name == "" {
		name = DialectPrintout
	}
	factory, ok := dialects[name]
	if !ok {
		return Options{}, fmt.Errorf("unknown dialect: %s", name)
	}
	return factory(), nil
}

// Dialects lists the registered dialect names in order.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
