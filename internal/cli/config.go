package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration loaded from .framelens.toml.
// Zero values mean "use the built-in default"; command-line flags override
// anything set here.
type Config struct {
	Descriptor struct {
		Size int `toml:"size"`
		Bins int `toml:"bins"`
	} `toml:"descriptor"`

	Match struct {
		Threshold float64 `toml:"threshold"`
	} `toml:"match"`

	Analysis struct {
		Workers int `toml:"workers"`
	} `toml:"analysis"`

	Cache struct {
		// Backend is "file" (default), "redis", or "none".
		Backend   string `toml:"backend"`
		RedisAddr string `toml:"redis_addr"`
		RedisDB   int    `toml:"redis_db"`
	} `toml:"cache"`

	History struct {
		// Backend is "file" (default) or "mongo".
		Backend  string `toml:"backend"`
		MongoURI string `toml:"mongo_uri"`
		MongoDB  string `toml:"mongo_db"`
	} `toml:"history"`
}

// LoadConfig reads the configuration from path. With an empty path it looks
// for .framelens.toml in the working directory, then the home directory; a
// missing file yields the zero config without error.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		found, ok := findConfig()
		if !ok {
			return cfg, nil
		}
		path = found
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() (string, bool) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, configFileName)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return fmt.Errorf("invalid cache backend %q (must be 'file', 'redis', or 'none')", c.Cache.Backend)
	}
	switch c.History.Backend {
	case "", "file", "mongo":
	default:
		return fmt.Errorf("invalid history backend %q (must be 'file' or 'mongo')", c.History.Backend)
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		return fmt.Errorf("match threshold %v out of range [0, 1]", c.Match.Threshold)
	}
	return nil
}
