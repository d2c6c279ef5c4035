// Package config loads the optional user configuration from
// $XDG_CONFIG_HOME/kibank/config.toml. A missing file is not an
// error; every field has a usable zero value.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/kibank/pkg/errors"
	"github.com/arthur-debert/kibank/pkg/logging"
)

// Config holds user preferences.
type Config struct {
	// Author is the default author for created banks, used when
	// neither --author nor an index.json supplies one.
	Author string `toml:"author"`

	// Color controls styled output: "auto" (default), "on" or "off".
	Color string `toml:"color"`
}

// Path returns the location of the user configuration file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "kibank", "config.toml")
}

// Load reads the user configuration. A missing file yields the zero
// config; a file that cannot be parsed is a CONFIG_PARSE error.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a configuration file from an explicit path.
func LoadFrom(path string) (Config, error) {
	log := logging.GetLogger("config")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Trace().Str("path", path).Msg("No config file")
		return Config{}, nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse config %s", path)
	}
	log.Debug().Str("path", path).Msg("Loaded config")
	return cfg, nil
}
