// Package config loads lifter settings from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Output formats for the lifted module.
const (
	FormatJSON = "json"
	FormatSexp = "sexp"
)

// Config is the lifter configuration as it is encoded in TOML.
type Config struct {
	// OnError is the failure policy for a fatal error in one
	// function: "continue" drops the function and keeps lifting,
	// "abort" fails the whole lift.
	OnError string `toml:"on-error"`

	// Parallel lowers independent functions concurrently.
	Parallel bool `toml:"parallel"`

	// SemanticDB is the path to the knowledge base file.
	SemanticDB string `toml:"semantic-db,omitempty"`

	// Format selects the output encoding, "json" or "sexp".
	Format string `toml:"format"`

	// Output is the file lifted IR is written to; empty means stdout.
	Output string `toml:"output,omitempty"`

	// Verbose enables debug logging.
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		OnError: "continue",
		Format:  FormatJSON,
	}
}

// Load reads and validates a configuration file. Fields the file
// omits keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.OnError {
	case "continue", "abort":
	default:
		return fmt.Errorf("on-error must be \"continue\" or \"abort\", got %q", c.OnError)
	}
	switch c.Format {
	case FormatJSON, FormatSexp:
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatJSON, FormatSexp, c.Format)
	}
	return nil
}
