package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// configurable lists the flags that a config file may set.
var configurable = map[string]bool{
	"capacity":  true,
	"max-steps": true,
	"batch":     true,
	"color":     true,
	"palette":   true,
	"speed":     true,
	"tick":      true,
	"catalog":   true,
	"cache":     true,
	"no-cache":  true,
	"log-level": true,
}

// applyConfigFile sets flag defaults from a TOML file. Flags given on the
// command line win. A missing file is only an error when required.
func applyConfigFile(fset *flag.FlagSet, path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	var values map[string]interface{}
	if err := toml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}

	explicit := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !configurable[key] {
			return fmt.Errorf("%s: unknown setting %q", path, key)
		}
		if explicit[key] {
			continue
		}
		if err := fset.Set(key, configValue(values[key])); err != nil {
			return fmt.Errorf("%s: %s: %w", path, key, err)
		}
	}
	return nil
}

// configValue renders a TOML value the way it would be typed on the
// command line. Arrays become comma separated lists.
func configValue(v interface{}) string {
	if list, ok := v.([]interface{}); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

func defaultConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.toml")
}
