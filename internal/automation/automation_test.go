package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/storage"
)

const scenarioYAML = `
name: lines
description: two small lines and a measured mesh
runs:
  - name: line-4
    generator: line
    nodes: 4
  - generator: line
    nodes: 5
    alpha: 0
  - preset: measure-mesh
    nodes: 9
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "lines", sc.Name)
	require.Len(t, sc.Runs, 3)
	require.NotNil(t, sc.Runs[1].Alpha)
	assert.Equal(t, 0.0, *sc.Runs[1].Alpha)
	assert.Nil(t, sc.Runs[0].Alpha)

	_, err = ParseScenario([]byte("name: empty\n"))
	assert.ErrorIs(t, err, ErrEmptyScenario)

	_, err = ParseScenario([]byte("runs: [\n"))
	assert.Error(t, err)
}

func TestScenarioRunConfig(t *testing.T) {
	alpha := 0.5
	cfg, err := ScenarioRun{Preset: "ring-12", Alpha: &alpha, Nodes: 6}.Config()
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Alpha)
	assert.Equal(t, "ring", cfg.Topology.Generator)
	assert.Equal(t, 6, cfg.Topology.Nodes)

	_, err = ScenarioRun{Preset: "nope"}.Config()
	assert.Error(t, err)

	_, err = ScenarioRun{Generator: "torus"}.Config()
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	st := storage.New(t.TempDir())
	records, err := RunScenario(context.Background(), sc, st, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "line-4", records[0].Name)
	assert.Equal(t, "run-2", records[1].Name)
	assert.Equal(t, "measure-mesh", records[2].Name)

	assert.Equal(t, cascade.HaltedDisconnected, records[0].Status)
	assert.Equal(t, cascade.HaltedDisconnected, records[1].Status)
	assert.Equal(t, cascade.Exhausted, records[2].Status)
	assert.Equal(t, 1, records[2].Rounds)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	for _, r := range records {
		assert.NotEmpty(t, r.RunID)
	}
}

func TestRunScenarioStopsAtFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	data := "name: broken\nruns:\n  - generator: line\n    nodes: 4\n  - generator: line\n    nodes: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	records, err := RunScenario(context.Background(), sc, nil, nil)
	assert.Error(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].RunID)
}
