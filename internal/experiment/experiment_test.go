package experiment

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/config"
	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/metrics"
	"github.com/san-kum/cascadesim/internal/storage"
	"github.com/san-kum/cascadesim/internal/topology"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if got := len(r.ListGenerators()); got != 7 {
		t.Errorf("expected 7 generators, got %d", got)
	}
	if plans := r.ListPlans(); len(plans) != 2 || plans[0] != "canonical" || plans[1] != "measure" {
		t.Errorf("unexpected plans %v", plans)
	}

	gen, err := r.GetGenerator("star")
	if err != nil {
		t.Fatalf("get generator: %v", err)
	}
	d, err := gen(topology.Params{Nodes: 5})
	if err != nil || len(d.Edges()) != 4 {
		t.Errorf("star of 5: %v edges, err %v", d.Edges(), err)
	}

	if _, err := r.GetGenerator("torus"); err == nil {
		t.Error("expected error for unknown generator")
	}
	if _, err := r.GetPlan("chaos"); err == nil {
		t.Error("expected error for unknown plan")
	}

	plan, err := r.GetPlan("measure")
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if plan.MaxRounds != 1 {
		t.Errorf("measure plan should be bounded to 1 round, got %d", plan.MaxRounds)
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.DefaultConfig()
	exp := New(cfg, nil)

	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Status != cascade.HaltedDisconnected {
		t.Errorf("expected halted, got %s", res.Status)
	}
	if res.Rounds != 2 || res.History.IterCount() != 3 {
		t.Errorf("expected 2 rounds and 3 iterations, got %d and %d", res.Rounds, res.History.IterCount())
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0].MaxNode != 1 || res.Rows[1].Status != "halted-disconnected" {
		t.Errorf("unexpected rows %+v", res.Rows)
	}
	if res.Metrics["removed_nodes"] != 2 {
		t.Errorf("expected 2 removed nodes, got %f", res.Metrics["removed_nodes"])
	}

	meta := exp.Metadata("example", res)
	if meta.Plan != "canonical" || meta.Nodes != 10 || meta.Edges != 12 || len(meta.Steps) != 9 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	st := storage.New(t.TempDir())
	runID, err := st.Save(meta, res.Topology, res.Rows)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	rows, err := st.LoadRounds(runID)
	if err != nil || len(rows) != 2 {
		t.Errorf("load rounds: %d rows, err %v", len(rows), err)
	}
}

func TestExperimentMeasurePlan(t *testing.T) {
	cfg := config.GetPreset("measure-mesh")
	exp := New(cfg, nil)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Status != cascade.Exhausted || res.Rounds != 1 {
		t.Errorf("expected one exhausted round, got %s after %d", res.Status, res.Rounds)
	}
	if res.History.IterCount() != 1 || len(res.History.BetaDeltas()) != 1 {
		t.Errorf("measure plan should only annotate iteration 0")
	}
}

func TestExperimentCustomSteps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = []string{"update-paths", "betweenness", "capacity"}
	cfg.MaxRounds = 2

	obs := metrics.NewRegistry()
	exp := New(cfg, nil)
	exp.AddObserver(obs)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Rounds != 2 || res.Status != cascade.Exhausted {
		t.Errorf("expected 2 exhausted rounds, got %d, %s", res.Rounds, res.Status)
	}
	if got := exp.Metadata("custom", res).Plan; got != "custom" {
		t.Errorf("expected custom plan, got %s", got)
	}
}

func TestExperimentTopologyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := graph.SaveDesc(path, graph.Example()); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Topology.File = path
	exp := New(cfg, nil)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg.Topology.File = filepath.Join(t.TempDir(), "missing.yaml")
	if err := New(cfg, nil).Setup(); err == nil {
		t.Error("expected error for missing topology file")
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown plan", func(c *config.Config) { c.Plan = "chaos" }},
		{"invalid config", func(c *config.Config) { c.Alpha = -3 }},
		{"too few nodes", func(c *config.Config) { c.Topology.Generator = "line"; c.Topology.Nodes = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if err := New(cfg, nil).Setup(); err == nil {
				t.Error("expected setup error")
			}
		})
	}
}
