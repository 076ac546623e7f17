// Package config is used to load the configuration file
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/blacktop/fa/pkg/alias"
	"github.com/blacktop/fa/pkg/host/macho"
	"github.com/blacktop/fa/pkg/interp"
	"github.com/blacktop/fa/pkg/signature"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"
)

type aliases struct {
	// Global alias file; empty selects the built-in table.
	Global string     `mapstructure:"global" yaml:"global,omitempty" json:"global,omitempty"`
	Mode   alias.Mode `mapstructure:"mode" yaml:"mode,omitempty" json:"mode,omitempty"`
}

type input struct {
	Raw       bool   `mapstructure:"raw" yaml:"raw,omitempty" json:"raw,omitempty"`
	Base      uint64 `mapstructure:"base" yaml:"base,omitempty" json:"base,omitempty"`
	CacheSize int    `mapstructure:"cache-size" yaml:"cache-size,omitempty" json:"cache-size,omitempty"`
}

// Config is the configuration struct
type Config struct {
	SignaturesRoot string  `mapstructure:"signatures-root" yaml:"signatures-root,omitempty" json:"signatures-root,omitempty"`
	Project        string  `mapstructure:"project" yaml:"project,omitempty" json:"project,omitempty"`
	Alias          aliases `mapstructure:"alias" yaml:"alias,omitempty" json:"alias,omitempty"`
	Strict         bool    `mapstructure:"strict" yaml:"strict,omitempty" json:"strict,omitempty"`
	TargetVersion  string  `mapstructure:"target-version" yaml:"target-version,omitempty" json:"target-version,omitempty"`
	Host           input   `mapstructure:"host" yaml:"host,omitempty" json:"host,omitempty"`
}

// Dir returns the folder holding the config file and, by default, the
// signatures.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to get user home directory: %v", err)
	}
	return filepath.Join(home, ".config", "fa"), nil
}

// SetDefaults registers the default values with viper.
func SetDefaults() {
	if dir, err := Dir(); err == nil {
		viper.SetDefault("signatures-root", filepath.Join(dir, "signatures"))
	}
	viper.SetDefault("project", interp.DefaultProject)
	viper.SetDefault("alias.mode", alias.MatchPrefix.String())
	viper.SetDefault("host.cache-size", macho.DefaultCacheSize)
}

func (c *Config) verify() error {
	if c.SignaturesRoot == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.SignaturesRoot = filepath.Join(dir, "signatures")
	}
	if c.Project == "" {
		c.Project = interp.DefaultProject
	}
	if filepath.IsAbs(c.Project) {
		return fmt.Errorf("config: project must be relative to the signatures root: %s", c.Project)
	}
	if err := signature.ValidateTarget(c.TargetVersion); err != nil {
		return fmt.Errorf("config: target-version: %w", err)
	}
	if c.Host.CacheSize < 0 {
		return fmt.Errorf("config: host.cache-size must not be negative")
	}
	return nil
}

// RunContext converts the configuration into interpreter run settings.
func (c *Config) RunContext() interp.RunContext {
	rc := interp.RunContext{
		Root:          c.SignaturesRoot,
		Project:       c.Project,
		GlobalAliases: c.Alias.Global,
		AliasMode:     c.Alias.Mode,
		TargetVersion: c.TargetVersion,
	}
	if c.Strict {
		rc.Policy = interp.PolicyStrict
	}
	return rc
}

// LoadConfig loads the configuration from viper (config file, env and flags)
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}
	if c == nil {
		c = &Config{}
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}

// Load reads a standalone yaml config file.
func Load(file string) (*Config, error) {
	f, err := os.Open(file) // #nosec
	if err != nil {
		return nil, err
	}
	defer f.Close()
	log.WithField("file", file).Debug("loading config file")
	return LoadReader(f)
}

// LoadReader config via io.Reader.
func LoadReader(fd io.Reader) (*Config, error) {
	data, err := io.ReadAll(fd)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: failed to parse yaml: %v", err)
	}
	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}
	return &c, nil
}

// Set updates a single top-level key of the yaml config file at path,
// creating the file if needed and keeping every other key as is.
func Set(path, key string, value any) error {
	settings := make(map[string]any)
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("config: failed to parse %s: %v", path, err)
	}
	if settings == nil {
		settings = make(map[string]any)
	}
	settings[key] = value
	out, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: failed to create config folder: %v", err)
	}
	return os.WriteFile(path, out, 0o600)
}
