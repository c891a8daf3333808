// Package config loads command-line defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// DefaultPath returns the per-user configuration file location,
// $XDG_CONFIG_HOME/lox/config.yaml or its platform equivalent. It returns
// "" when no configuration directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lox", "config.yaml")
}

// Load is a [kong.ConfigurationLoader] that reads a flat YAML mapping of
// flag names to values:
//
//	max-args: 8
//	log-level: debug
//	history-file: ~/.lox_history
//
// Keys may use hyphens or underscores. Command-line flags override values
// from the file.
func Load(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}

	resolved := make(Values, len(values))
	for key, value := range values {
		resolved[strings.ReplaceAll(key, "_", "-")] = normalize(value)
	}
	return resolved, nil
}

// Values implements [kong.Resolver] over decoded configuration.
type Values map[string]any

// Validate rejects keys that do not name a flag of the application.
func (v Values) Validate(app *kong.Application) error {
	var known []string
	for _, group := range app.AllFlags(true) {
		for _, flag := range group {
			known = append(known, flag.Name)
		}
	}

	for key := range v {
		if !slices.Contains(known, key) {
			return fmt.Errorf("config: unknown option %q", key)
		}
	}
	return nil
}

// Resolve implements [kong.Resolver].
func (v Values) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	value, ok := v[flag.Name]
	if !ok {
		return nil, nil
	}
	return value, nil
}

// normalize converts decoded YAML scalars into forms kong's mappers accept.
// Numbers are passed as strings.
func normalize(value any) any {
	switch n := value.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return value
	}
}
