package viz

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cascadesim/internal/cascade"
)

var ErrUnknownSeries = errors.New("viz: unknown series")

// Series names understood by HistorySeries.
const (
	SeriesKS        = "ks"
	SeriesBetaDelta = "beta_delta"
	SeriesAlive     = "alive"
	SeriesCascade   = "cascade"
)

func SeriesNames() []string {
	return []string{SeriesKS, SeriesBetaDelta, SeriesAlive, SeriesCascade}
}

var seriesCaptions = map[string]string{
	SeriesKS:        "k (overloaded fraction per round)",
	SeriesBetaDelta: "beta delta (resilience per round)",
	SeriesAlive:     "alive nodes per iteration",
	SeriesCascade:   "cascade size per round",
}

// HistorySeries extracts one named series from h.
func HistorySeries(h *cascade.History, name string) ([]float64, error) {
	switch name {
	case SeriesKS:
		return h.KS(), nil
	case SeriesBetaDelta:
		return h.BetaDeltas(), nil
	case SeriesAlive:
		out := make([]float64, h.IterCount())
		for i := range out {
			out[i] = float64(h.At(i).Graph.Alive())
		}
		return out, nil
	case SeriesCascade:
		cascades := h.Cascades()
		out := make([]float64, len(cascades))
		for i, c := range cascades {
			out[i] = float64(c)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, name)
}

type PlotOptions struct {
	Height int
	Width  int
}

var DefaultPlotOptions = PlotOptions{Height: 10, Width: 60}

// Plot renders values as an asciigraph chart with caption underneath.
func Plot(values []float64, caption string, opts PlotOptions) string {
	if len(values) == 0 {
		return caption + ": no data\n"
	}
	if opts.Height <= 0 {
		opts.Height = DefaultPlotOptions.Height
	}
	if opts.Width <= 0 {
		opts.Width = DefaultPlotOptions.Width
	}
	// a single sample would plot as an empty chart
	if len(values) == 1 {
		values = []float64{values[0], values[0]}
	}
	return asciigraph.Plot(values,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	) + "\n"
}

// PlotHistory renders the named series of h.
func PlotHistory(h *cascade.History, name string, opts PlotOptions) (string, error) {
	values, err := HistorySeries(h, name)
	if err != nil {
		return "", err
	}
	return Plot(values, seriesCaptions[name], opts), nil
}
