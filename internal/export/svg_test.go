package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
)

func exampleHistory(t *testing.T) *cascade.History {
	t.Helper()
	p, err := cascade.New(graph.Example())
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)
	return p.History()
}

func TestIterationSVG(t *testing.T) {
	h := exampleHistory(t)

	first := IterationSVG(h.At(0), DefaultSVGOptions)
	assert.True(t, strings.HasPrefix(first, "<?xml"))
	assert.True(t, strings.HasSuffix(first, "</svg>\n"))
	assert.Equal(t, 12, strings.Count(first, "<line "))
	assert.Equal(t, 0, strings.Count(first, `class="dead"`))
	assert.Equal(t, 1, strings.Count(first, `class="max"`))
	assert.Equal(t, 10, strings.Count(first, "<text "))

	last := IterationSVG(h.At(2), SVGOptions{Size: 200, NodeRadius: 4, Labels: true})
	assert.Equal(t, 2, strings.Count(last, `class="dead"`))
	assert.Contains(t, last, `width="200"`)
	assert.NotContains(t, IterationSVG(h.At(2), SVGOptions{Labels: false}), "<text ")
}

func TestSeriesSVG(t *testing.T) {
	assert.Empty(t, SeriesSVG([]float64{1}, 100, 50, "#fff"))

	svg := SeriesSVG([]float64{0, 1, 0.5}, 100, 50, "#ff0000")
	assert.Contains(t, svg, `stroke="#ff0000"`)
	assert.Contains(t, svg, "M0.0,")
	assert.Equal(t, 2, strings.Count(svg, " L"))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.svg")
	require.NoError(t, WriteFile(path, IterationSVG(exampleHistory(t).At(0), DefaultSVGOptions)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<circle")
}
