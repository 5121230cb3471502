// Package config loads the driver's optional anemo.toml file. Nothing
// in here reaches the five compiler stages: the core pipeline takes no
// configuration input, so this package only holds knobs the driver
// itself needs (which binaries to shell out to, where to put build
// output).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the anemo.toml shape. Both sections are optional; any
// field left unset in the file keeps its Default value.
type Config struct {
	Toolchain struct {
		Assembler string `toml:"assembler"`
		Linker    string `toml:"linker"`
	} `toml:"toolchain"`

	Build struct {
		OutDir string `toml:"out_dir"`
	} `toml:"build"`
}

// Default returns the configuration used when no anemo.toml is found:
// plain "as"/"cc" off the $PATH, output alongside the source file.
func Default() *Config {
	cfg := &Config{}
	cfg.Toolchain.Assembler = "as"
	cfg.Toolchain.Linker = "cc"
	cfg.Build.OutDir = ""
	return cfg
}

// Load reads path if it exists, overlaying its values onto Default.
// A missing file is not an error — it just means every default stands.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}
