// Package config loads the nody CLI configuration from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied to missing values.
const (
	DefaultGraphsDir    = "graphs"
	DefaultLogLevel     = "info"
	DefaultMaxHops      = 1000
	DefaultTickInterval = "100ms"
	DefaultHTTPAddr     = ":8080"
	DefaultRedisPrefix  = "nody:graph:"
)

// FileNames lists the configuration files Find looks for, in priority order.
var FileNames = []string{"nody.yaml", "nody.yml", "nody.toml"}

// Config is the CLI configuration.
type Config struct {
	GraphsDir    string             `yaml:"graphs_dir" toml:"graphs_dir"`
	LogLevel     string             `yaml:"log_level" toml:"log_level"`
	MaxHops      int                `yaml:"max_hops" toml:"max_hops"`
	TickInterval string             `yaml:"tick_interval" toml:"tick_interval"`
	Controllers  []ControllerConfig `yaml:"controllers" toml:"controllers"`
	Redis        RedisConfig        `yaml:"redis" toml:"redis"`
	HTTP         HTTPConfig         `yaml:"http" toml:"http"`
}

// ControllerConfig binds a controller name to a graph document id.
type ControllerConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Graph string `yaml:"graph" toml:"graph"`
}

// RedisConfig selects the redis graph store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	Prefix   string `yaml:"prefix" toml:"prefix"`
}

// HTTPConfig configures the HTTP adapter.
type HTTPConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, decoding by extension, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		_, err = toml.Decode(string(data), c)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Find returns the first configuration file present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// LoadOrDefault loads the configuration found in dir, or returns Default.
func LoadOrDefault(dir string) (*Config, error) {
	p, ok := Find(dir)
	if !ok {
		return Default(), nil
	}
	return Load(p)
}

func (c *Config) applyDefaults() {
	if c.GraphsDir == "" {
		c.GraphsDir = DefaultGraphsDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxHops <= 0 {
		c.MaxHops = DefaultMaxHops
	}
	if c.TickInterval == "" {
		c.TickInterval = DefaultTickInterval
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = DefaultRedisPrefix
	}
}

// Validate reports malformed values.
func (c *Config) Validate() error {
	var errs []error
	if d, err := time.ParseDuration(c.TickInterval); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval %q is not a positive duration", c.TickInterval))
	}
	names := make(map[string]bool)
	for i, cc := range c.Controllers {
		if cc.Name == "" || cc.Graph == "" {
			errs = append(errs, fmt.Errorf("controllers[%d]: name and graph are required", i))
			continue
		}
		if names[cc.Name] {
			errs = append(errs, fmt.Errorf("controllers[%d]: duplicate name %q", i, cc.Name))
		}
		names[cc.Name] = true
	}
	return errors.Join(errs...)
}

// Interval returns the parsed tick interval. Call after Validate.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTickInterval)
	}
	return d
}
