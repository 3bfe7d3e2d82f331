package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

func TestLoadMissingFileGivesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := &Config{
		LibraryRoot:      "/srv/kicad/parts",
		FootprintLibrary: "parts",
		VendorProperty:   "JLC",
		TargetVersion:    "9.0",
		OverrideBackend:  BackendBolt,
		Generator:        "lab",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"target_version": "7"}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := Default()
	if cfg.TargetVersion != "7" || cfg.LibraryRoot != def.LibraryRoot || cfg.OverrideBackend != BackendJSON {
		t.Errorf("unexpected config %+v", cfg)
	}
	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.Target != "7.0" {
		t.Errorf("profile target = %q", p.Target)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "empty config gets defaults",
			check: func(t *testing.T, c *Config) {
				if diff := cmp.Diff(Default(), c); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "backend is normalised",
			cfg:  Config{OverrideBackend: " BOLT "},
			check: func(t *testing.T, c *Config) {
				if c.OverrideBackend != BackendBolt {
					t.Errorf("backend = %q", c.OverrideBackend)
				}
			},
		},
		{name: "unknown backend", cfg: Config{OverrideBackend: "sqlite"}, wantErr: true},
		{name: "unsupported version", cfg: Config{TargetVersion: "5.1"}, wantErr: true},
		{name: "garbage version", cfg: Config{TargetVersion: "latest"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, &c)
			}
		})
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"override_backend": "csv"}`), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown backend")
	}
	os.WriteFile(path, []byte(`{`), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{BackendJSON, BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			cfg := Default()
			cfg.LibraryRoot = filepath.Join(t.TempDir(), "lib")
			cfg.OverrideBackend = backend
			store, err := cfg.OpenStore(nil)
			if err != nil {
				t.Fatalf("OpenStore failed: %v", err)
			}
			defer store.Close()
			if err := store.Set("c1", placement.Override{Scale: &placement.Triple{2, 2, 2}}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if _, err := store.Get("C1"); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		})
	}
}
