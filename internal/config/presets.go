package config

import "sort"

var Presets = map[string]*Config{
	"example": {
		Alpha: 3.0, Plan: "canonical",
		Topology: TopologyConfig{Generator: "example"},
	},
	"fragile-example": {
		Alpha: 0.2, Plan: "canonical",
		Topology: TopologyConfig{Generator: "example"},
	},
	"ring-12": {
		Alpha: 3.0, Plan: "canonical",
		Topology: TopologyConfig{Generator: "ring", Nodes: 12},
	},
	"net-6": {
		Alpha: 3.0, Plan: "canonical",
		Topology: TopologyConfig{Generator: "net", Nodes: 6},
	},
	"star-9": {
		Alpha: 3.0, Plan: "canonical",
		Topology: TopologyConfig{Generator: "star", Nodes: 9},
	},
	"line-8": {
		Alpha: 3.0, Plan: "canonical",
		Topology: TopologyConfig{Generator: "line", Nodes: 8},
	},
	"mesh-16": {
		Alpha: 1.0, Plan: "canonical",
		Topology: TopologyConfig{Generator: "mesh", Nodes: 16},
	},
	"random-20": {
		Alpha: 0.5, Plan: "canonical",
		Topology: TopologyConfig{Generator: "random", Nodes: 20, Extra: 15, Seed: 7},
	},
	"measure-mesh": {
		Alpha: 3.0, Plan: "measure", MaxRounds: 1,
		Topology: TopologyConfig{Generator: "mesh", Nodes: 25},
	},
}

// GetPreset returns a copy of the named preset merged onto the defaults, or
// nil when it does not exist.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Alpha = p.Alpha
	cfg.Plan = p.Plan
	cfg.MaxRounds = p.MaxRounds
	cfg.Topology = p.Topology
	if len(p.Steps) > 0 {
		cfg.Steps = append([]string(nil), p.Steps...)
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
