// Package config loads and saves the persistent eda2kicad settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/format"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/symbol"
	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

// Override store backends
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// DefaultLibraryName names the library files and is the footprint library
// nickname used in symbol Footprint properties
const DefaultLibraryName = "eda2kicad"

// Config stores persistent settings. Command line flags take precedence.
type Config struct {
	LibraryRoot      string `json:"library_root"`
	FootprintLibrary string `json:"footprint_library"`
	VendorProperty   string `json:"vendor_property"`
	TargetVersion    string `json:"target_version"`
	OverrideBackend  string `json:"override_backend"`
	Generator        string `json:"generator"`
}

// Default returns the settings used when no config file exists
func Default() *Config {
	root := DefaultLibraryName
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, "Documents", "KiCad", DefaultLibraryName)
	}
	return &Config{
		LibraryRoot:      root,
		FootprintLibrary: DefaultLibraryName,
		VendorProperty:   symbol.DefaultVendorProperty,
		TargetVersion:    format.DefaultTarget,
		OverrideBackend:  BackendJSON,
		Generator:        format.Generator,
	}
}

// Path returns the config file location in the user config directory
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "eda2kicad", "config.json"), nil
}

// Load reads the config at path, or at Path() when path is empty. A
// missing file yields Default(). Fields absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, or to Path() when path is empty
func Save(path string, cfg *Config) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate fills empty fields with defaults and rejects unknown values
func (c *Config) Validate() error {
	def := Default()
	if strings.TrimSpace(c.LibraryRoot) == "" {
		c.LibraryRoot = def.LibraryRoot
	}
	if c.FootprintLibrary = strings.TrimSpace(c.FootprintLibrary); c.FootprintLibrary == "" {
		c.FootprintLibrary = def.FootprintLibrary
	}
	if c.VendorProperty == "" {
		c.VendorProperty = def.VendorProperty
	}
	if c.Generator == "" {
		c.Generator = def.Generator
	}

	if c.TargetVersion == "" {
		c.TargetVersion = def.TargetVersion
	}
	if _, err := format.ForVersion(c.TargetVersion); err != nil {
		return err
	}

	c.OverrideBackend = strings.ToLower(strings.TrimSpace(c.OverrideBackend))
	switch c.OverrideBackend {
	case "":
		c.OverrideBackend = BackendJSON
	case BackendJSON, BackendBolt:
	default:
		return fmt.Errorf("unknown override backend %q (want %s or %s)", c.OverrideBackend, BackendJSON, BackendBolt)
	}
	return nil
}

// Profile returns the output format for TargetVersion
func (c *Config) Profile() (format.Profile, error) {
	return format.ForVersion(c.TargetVersion)
}

// OpenStore opens the override store of the configured library
func (c *Config) OpenStore(logger *slog.Logger) (placement.Store, error) {
	if c.OverrideBackend == BackendBolt {
		if err := os.MkdirAll(c.LibraryRoot, 0o755); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return placement.OpenLibraryBoltStore(c.LibraryRoot, logger)
	}
	return placement.OpenLibraryStore(c.LibraryRoot, logger), nil
}
