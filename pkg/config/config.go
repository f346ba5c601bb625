package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/nimp-run/nimp-run/pkg/logflags"
	"github.com/nimp-run/nimp-run/pkg/proc"
)

// Config defines all configuration options available to be set through the
// config file.
type Config struct {
	// StartupSkip is the number of startup banners to suppress, 2 when unset.
	StartupSkip *int `yaml:"startup-skip,omitempty"`
	// StartupSignature is the prefix identifying a startup banner, "cYg"
	// when unset. An empty string disables the startup filter.
	StartupSignature *string `yaml:"startup-signature,omitempty"`

	// Quiet suppresses the launcher's own startup and exit lines.
	Quiet bool `yaml:"quiet"`
}

// LoadConfig reads the config file at path. An empty path returns the
// default configuration without touching the file system.
func LoadConfig(path string) (*Config, error) {
	log := logflags.ConfigLogger()
	if path == "" {
		log.Debug("no config file, using defaults")
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %v", err)
	}

	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("unable to decode config file %s: %v", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %v", path, err)
	}
	if logflags.Config() {
		log.Debugf("loaded %s: %+v", path, c.PumpConfig())
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.StartupSkip != nil && *c.StartupSkip < 0 {
		return errors.New("startup-skip must not be negative")
	}
	return nil
}

// PumpConfig returns the startup filter settings of c, falling back to the
// defaults for unset values.
func (c *Config) PumpConfig() proc.PumpConfig {
	conf := proc.DefaultPumpConfig()
	if c.StartupSkip != nil {
		conf.StartupSkip = *c.StartupSkip
	}
	if c.StartupSignature != nil {
		conf.StartupSignature = []byte(*c.StartupSignature)
	}
	return conf
}
