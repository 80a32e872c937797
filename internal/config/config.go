package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"brew/pkg/interpreter"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a YAML file may provide. Command line flags that
// were set explicitly take precedence over these.
type Config struct {
	Fuel    int    `yaml:"fuel"`     // instruction budget, <= 0 for unlimited
	Verbose bool   `yaml:"verbose"`  // disassembly and stats
	Trace   bool   `yaml:"trace"`    // log every executed instruction
	NoColor bool   `yaml:"no_color"` // plain terminal output
	Output  string `yaml:"output"`   // native executable name
}

// Default returns the settings used when no file is given
func Default() Config {
	return Config{
		Fuel:   interpreter.DefaultFuel,
		Output: "a.out",
	}
}

// Load reads a YAML config file on top of Default
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Output == "" {
		cfg.Output = Default().Output
	}

	return cfg, nil
}
