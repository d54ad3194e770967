// Package config loads the settings shared by the sabre commands: a
// .env file, an optional YAML file and SABRE_* environment variables, in
// increasing order of precedence. Command line flags override the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when Load is given no path and the file exists.
const DefaultFile = "sabre.yaml"

type Config struct {
	Workers         int      `yaml:"workers"`
	Strict          bool     `yaml:"strict"`
	FailFast        bool     `yaml:"fail_fast"`
	Verbosity       int      `yaml:"verbosity"`
	LibraryPrefixes []string `yaml:"library_prefixes"`
	Mappings        struct {
		Format string `yaml:"format"`
		From   string `yaml:"from"`
		To     string `yaml:"to"`
	} `yaml:"mappings"`
}

func Default() *Config {
	cfg := &Config{Workers: runtime.GOMAXPROCS(0)}
	cfg.Mappings.Format = "auto"
	return cfg
}

// Load builds the configuration. A missing path is an error; a missing
// DefaultFile or .env is not.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if err := cfg.fromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	if v := os.Getenv("SABRE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("SABRE_WORKERS: invalid worker count %q", v)
		}
		c.Workers = n
	}
	if err := envBool("SABRE_STRICT", &c.Strict); err != nil {
		return err
	}
	if err := envBool("SABRE_FAIL_FAST", &c.FailFast); err != nil {
		return err
	}
	if v := os.Getenv("SABRE_VERBOSITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SABRE_VERBOSITY: %w", err)
		}
		c.Verbosity = n
	}
	if v := os.Getenv("SABRE_LIBRARY_PREFIXES"); v != "" {
		c.LibraryPrefixes = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.LibraryPrefixes = append(c.LibraryPrefixes, p)
			}
		}
	}
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
