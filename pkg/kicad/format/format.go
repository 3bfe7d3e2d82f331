// Package format selects the file-format details that differ between KiCad
// releases.
package format

import (
	"fmt"
	"regexp"
	"strings"

	version "github.com/mcuadros/go-version"
)

// DefaultTarget is used when no KiCad version is configured
const DefaultTarget = "8.0"

// Generator written into every file header
const (
	Generator        = "eda2kicad"
	GeneratorVersion = "1.0"
)

// Profile describes how files for one KiCad major release are written
type Profile struct {
	Target           string
	SymbolVersion    string
	FootprintVersion string

	// WriteGeneratorVersion emits (generator_version "...") after the generator
	WriteGeneratorVersion bool
	// WriteExcludeFromSim emits (exclude_from_sim no) in symbols
	WriteExcludeFromSim bool
	// FootprintProperties writes Reference/Value as property nodes instead
	// of fp_text reference/value
	FootprintProperties bool
	// HideYes writes hide flags as (hide yes) instead of a bare hide atom
	HideYes bool
}

var (
	kicad7 = Profile{
		Target:           "7.0",
		SymbolVersion:    "20220914",
		FootprintVersion: "20221018",
	}
	kicad8 = Profile{
		Target:                "8.0",
		SymbolVersion:         "20231120",
		FootprintVersion:      "20231120",
		WriteGeneratorVersion: true,
		WriteExcludeFromSim:   true,
		FootprintProperties:   true,
	}
	kicad9 = Profile{
		Target:                "9.0",
		SymbolVersion:         "20241209",
		FootprintVersion:      "20241229",
		WriteGeneratorVersion: true,
		WriteExcludeFromSim:   true,
		FootprintProperties:   true,
		HideYes:               true,
	}
)

var versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

// Default returns the KiCad 8 profile
func Default() Profile {
	return kicad8
}

// ForVersion picks the profile for a KiCad version such as "8", "7.0.11"
// or "9.0". An empty string selects the default.
func ForVersion(target string) (Profile, error) {
	target = strings.TrimPrefix(strings.TrimSpace(target), "v")
	if target == "" {
		return Default(), nil
	}
	if !versionPattern.MatchString(target) {
		return Profile{}, fmt.Errorf("format: invalid KiCad version %q", target)
	}

	v := version.Normalize(target)
	switch {
	case version.Compare(v, version.Normalize("10.0"), ">="):
		return Profile{}, fmt.Errorf("format: KiCad %s is not supported", target)
	case version.Compare(v, version.Normalize(kicad9.Target), ">="):
		return kicad9, nil
	case version.Compare(v, version.Normalize(kicad8.Target), ">="):
		return kicad8, nil
	case version.Compare(v, version.Normalize(kicad7.Target), ">="):
		return kicad7, nil
	}
	return Profile{}, fmt.Errorf("format: KiCad %s is older than the oldest supported release %s", target, kicad7.Target)
}

// Hide returns the hide flag in this profile's syntax
func (p Profile) Hide() string {
	if p.HideYes {
		return "(hide yes)"
	}
	return "hide"
}
