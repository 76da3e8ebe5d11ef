package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/cascadesim/internal/topology"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Alpha != 3.0 {
		t.Errorf("expected alpha 3.0, got %f", cfg.Alpha)
	}
	if cfg.Topology.Generator != "example" {
		t.Errorf("expected example topology, got %s", cfg.Topology.Generator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative alpha", func(c *Config) { c.Alpha = -1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"negative rounds", func(c *Config) { c.MaxRounds = -1 }},
		{"unknown step", func(c *Config) { c.Steps = []string{"update-paths", "explode"} }},
		{"invalid plan", func(c *Config) { c.Steps = []string{"betweenness", "remove-max"} }},
		{"unknown generator", func(c *Config) { c.Topology.Generator = "torus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Alpha = 0.75
	cfg.Steps = []string{"update-paths", "resilience"}
	cfg.Topology = TopologyConfig{Generator: "random", Nodes: 14, Extra: 3, Seed: 9}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Alpha != 0.75 {
		t.Errorf("expected alpha 0.75, got %f", loaded.Alpha)
	}
	if len(loaded.Steps) != 2 || loaded.Steps[1] != "resilience" {
		t.Errorf("unexpected steps %v", loaded.Steps)
	}
	if loaded.Topology.Params() != (topology.Params{Nodes: 14, Extra: 3, Seed: 9}) {
		t.Errorf("unexpected topology %+v", loaded.Topology)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("alpha: 1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Alpha != 1.5 {
		t.Errorf("expected alpha 1.5, got %f", cfg.Alpha)
	}
	if cfg.Plan != DefaultPlan || cfg.DataDir != DefaultDataDir {
		t.Errorf("defaults lost: plan %q, data dir %q", cfg.Plan, cfg.DataDir)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("alpha: [1, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ring-12")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Topology.Nodes != 12 {
		t.Errorf("expected 12 nodes, got %d", cfg.Topology.Nodes)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("expected defaults to be filled, got data dir %q", cfg.DataDir)
	}

	cfg.Topology.Nodes = 99
	if Presets["ring-12"].Topology.Nodes != 12 {
		t.Error("GetPreset must not expose the shared preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}
