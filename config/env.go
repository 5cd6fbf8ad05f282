// Package config loads configuration from environment variables.
//
// Stage overrides follow the pattern:
//
//	{Prefix}_{STAGE}_{FIELD}
//
// The stage name is upper-cased and dashes or spaces become underscores, so
// the stage "MedianFilter-0" reads MEDIANPIPE_MEDIANFILTER_0_TIMEOUT. Field
// names come from `envconfig` tags, or from `split_words` for untagged
// fields:
//
//	Interval        → INTERVAL
//	ProcessTimeout  → PROCESS_TIMEOUT
//
// Only variables that are set modify dst, so Load can overlay environment
// overrides on top of programmatic defaults. Durations use Go syntax ("5s",
// "100ms").
package config

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/kelseyhightower/envconfig"
)

// DefaultPrefix is the prefix used by the zero Loader.
const DefaultPrefix = "STAGEPIPE"

// Loader reads per-stage overrides from the environment.
type Loader struct {
	// Prefix is the first segment of every name. Empty means DefaultPrefix.
	Prefix string
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return normalizeStage(l.Prefix)
}

func (l Loader) stagePrefix(stage string) string {
	if stage == "" {
		return l.prefix()
	}
	return l.prefix() + "_" + normalizeStage(stage)
}

// Load overlays the variables under {Prefix}_{STAGE}_ onto dst, a pointer
// to a struct. An empty stage reads {Prefix}_{FIELD}.
func (l Loader) Load(stage string, dst any) error {
	if err := envconfig.Process(l.stagePrefix(stage), dst); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Keys lists the variable names Load consults for dst.
func (l Loader) Keys(stage string, dst any) []string {
	var buf bytes.Buffer
	if err := envconfig.Usagef(l.stagePrefix(stage), dst, &buf, "{{range .}}{{.Key}}\n{{end}}"); err != nil {
		return nil
	}
	return strings.Fields(buf.String())
}

// Load calls Load on the zero Loader.
func Load(stage string, dst any) error { return Loader{}.Load(stage, dst) }

// Keys calls Keys on the zero Loader.
func Keys(stage string, dst any) []string { return Loader{}.Keys(stage, dst) }

// normalizeStage upper-cases s, maps separators to '_' and drops everything
// else that is not a letter or digit.
func normalizeStage(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == ' ' || r == '_':
			return '_'
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToUpper(r)
		}
		return -1
	}, s)
}
