// Package config holds the runtime configuration of a mirror run and
// the parsing of the "<source>=>:<target>" pair syntax.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// pairSeparator splits a raw pair argument into source and target.
const pairSeparator = "=>:"

// Defaults for knobs the user left unset.
const (
	DefaultIntervalSeconds = 300
	DefaultBufferSizeKB    = 256
	MinIntervalSeconds     = 1
)

// Config is the full runtime configuration. Field names double as the
// config-file keys and, upper-cased with the env prefix, as environment
// variable names.
type Config struct {
	// Pairs holds raw "<source>=>:<target>" pair expressions.
	Pairs []string `json:"pairs" mapstructure:"pairs"`
	// IntervalSeconds is the delay between sync passes. Minimum is 1.
	IntervalSeconds int `json:"intervalSeconds" mapstructure:"interval_seconds"`
	// Once runs a single pass and exits instead of scheduling.
	Once bool `json:"once" mapstructure:"once"`
	// DryRun logs every copy and delete without touching the target.
	DryRun bool `json:"dryRun" mapstructure:"dry_run"`
	// PreserveAttrs propagates file mode and timestamps after a copy.
	PreserveAttrs bool `json:"preserveAttrs" mapstructure:"preserve_attrs"`

	// Excludes are glob patterns for entries a scan skips; patterns with
	// a slash match the path relative to the scan root, the rest match
	// base names anywhere in the tree.
	Excludes []string `json:"excludes" mapstructure:"excludes"`

	BufferSizeKB int `json:"bufferSizeKB" mapstructure:"buffer_size_kb"`

	LogLevel string `json:"logLevel" mapstructure:"log_level"`
	LogFile  string `json:"logFile" mapstructure:"log_file"`
	NoColor  bool   `json:"noColor" mapstructure:"no_color"`

	// LockFile guards against concurrent instances. Empty disables it.
	LockFile string `json:"lockFile" mapstructure:"lock_file"`
}

// Default returns a Config with every knob at its default value.
func Default() Config {
	return Config{
		IntervalSeconds: DefaultIntervalSeconds,
		BufferSizeKB:    DefaultBufferSizeKB,
		LogLevel:        "info",
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one folder pair is required")
	}
	if c.IntervalSeconds < MinIntervalSeconds {
		return fmt.Errorf("intervalSeconds must be at least %d, got %d", MinIntervalSeconds, c.IntervalSeconds)
	}
	if c.BufferSizeKB <= 0 {
		return fmt.Errorf("bufferSizeKB must be positive, got %d", c.BufferSizeKB)
	}
	return nil
}

// ParsePairs turns the raw pair expressions into [source, target]
// tuples. Malformed expressions and repeats of an already-seen source
// are dropped with a log line; pair-level validation (resolution,
// accessibility) happens later in the engine.
func (c *Config) ParsePairs(log *slog.Logger) [][2]string {
	seen := mapset.NewThreadUnsafeSet[string]()
	pairs := make([][2]string, 0, len(c.Pairs))

	for _, raw := range c.Pairs {
		src, trg, ok := splitPair(raw)
		if !ok {
			log.Warn("ignoring malformed folder pair, want \"<source>=>:<target>\"", "pair", raw)
			continue
		}
		if !seen.Add(src) {
			log.Warn("ignoring folder pair, source already configured", "source", src)
			continue
		}
		pairs = append(pairs, [2]string{src, trg})
	}
	return pairs
}

// splitPair splits on the first pair separator and requires exactly two
// non-empty sides.
func splitPair(raw string) (source, target string, ok bool) {
	before, after, found := strings.Cut(raw, pairSeparator)
	if !found {
		return "", "", false
	}
	source = strings.TrimSpace(before)
	target = strings.TrimSpace(after)
	if source == "" || target == "" || strings.Contains(after, pairSeparator) {
		return "", "", false
	}
	return source, target, true
}
