package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/eda2kicad/internal/config"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/format"
	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

var (
	// Global flags
	verbose       bool
	configPath    string
	libraryRoot   string
	targetVersion string
	backend       string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eda2kicad",
	Short: "Convert EasyEDA components to KiCad symbols, footprints and 3D placements",
	Long: `eda2kicad converts EasyEDA/LCSC component records into KiCad symbol
library entries and footprint files, and manages the 3D model placement
overrides stored with the library.

Examples:
  eda2kicad convert C2040.json --id C2040          # Add to the configured library
  eda2kicad convert C2040.json --id C2040 --stdout # Print the generated text
  eda2kicad override set C2040 --rotation 0,0,90   # Force the model rotation
  eda2kicad transform C2040.json --id C2040        # Show the resolved placement
  eda2kicad inspect lib.pretty/LM358.kicad_mod     # Summarise a generated file`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default is <user config dir>/eda2kicad/config.json)")
	rootCmd.PersistentFlags().StringVarP(&libraryRoot, "library", "l", "",
		"library root directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&targetVersion, "kicad", "",
		"target KiCad version: 7, 8 or 9 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "",
		"override store backend: json or bolt (overrides config)")
}

// setup loads the config, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if libraryRoot != "" {
		c.LibraryRoot = libraryRoot
	}
	if targetVersion != "" {
		c.TargetVersion = targetVersion
	}
	if backend != "" {
		c.OverrideBackend = backend
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logger.Debug("configuration", "library", cfg.LibraryRoot, "kicad", cfg.TargetVersion, "backend", cfg.OverrideBackend)
	return nil
}

func profile() (format.Profile, error) {
	return cfg.Profile()
}

func openStore() (placement.Store, error) {
	return cfg.OpenStore(logger)
}
