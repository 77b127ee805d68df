// Package cliconfig loads gtfs-validate CLI defaults from a YAML file so
// repeated validation runs (CI jobs, batch feed checks) don't have to repeat
// the same flags on every invocation.
package cliconfig

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// File is the on-disk shape of a gtfs-validate config file. Any field left
// zero-valued does not override the corresponding CLI flag default.
type File struct {
	CountryCode       string `yaml:"countryCode"`
	Mode              string `yaml:"mode"`
	Workers           int    `yaml:"workers"`
	MaxNoticesPerType int    `yaml:"maxNoticesPerType"`
	Format            string `yaml:"format"`
	Output            string `yaml:"output"`
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an operator-supplied CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return &f, nil
}
