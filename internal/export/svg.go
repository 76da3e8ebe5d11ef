// Package export renders run snapshots as standalone SVG documents.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
	"github.com/san-kum/cascadesim/internal/viz"
)

// SVGOptions sizes the drawing. A zero Size or NodeRadius falls back to
// DefaultSVGOptions.
type SVGOptions struct {
	Size       int
	NodeRadius float64
	Labels     bool
}

var DefaultSVGOptions = SVGOptions{Size: 480, NodeRadius: 9, Labels: true}

const (
	colorBackground = "#0a0a0a"
	colorEdge       = "#4488aa"
	colorAlive      = "#00cccc"
	colorDead       = "#333344"
	colorMaxLoad    = "#ff4444"
	colorLabel      = "#ffffff"
)

func header(sb *strings.Builder, w, h int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, colorBackground)
}

// IterationSVG draws one history iteration on a circle. Dead nodes stay in
// place as hollow markers and the most loaded alive node is highlighted.
func IterationSVG(it cascade.Iteration, opts SVGOptions) string {
	if opts.Size <= 0 {
		opts.Size = DefaultSVGOptions.Size
	}
	if opts.NodeRadius <= 0 {
		opts.NodeRadius = DefaultSVGOptions.NodeRadius
	}

	g := it.Graph
	margin := int(opts.NodeRadius*2) + 2
	pts := viz.CircleLayout(g.NodeCount(), opts.Size-2*margin, opts.Size-2*margin)
	for i := range pts {
		pts[i].X += margin
		pts[i].Y += margin
	}

	var sb strings.Builder
	header(&sb, opts.Size, opts.Size)

	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1.5\">\n", colorEdge)
	for i := range g.IterAlive() {
		for _, j := range g.Neighbors(i) {
			if j > i {
				fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", pts[i].X, pts[i].Y, pts[j].X, pts[j].Y)
			}
		}
	}
	sb.WriteString("</g>\n")

	maxNode := it.Metrics.MaxBetweenness
	for i, p := range pts {
		switch {
		case !g.IsAlive(graph.Node(i)):
			fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.1f\" fill=\"none\" stroke=\"%s\" class=\"dead\"/>\n", p.X, p.Y, opts.NodeRadius, colorDead)
		case maxNode.Valid() && maxNode.Idx() == i:
			fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.1f\" fill=\"%s\" class=\"max\"/>\n", p.X, p.Y, opts.NodeRadius, colorMaxLoad)
		default:
			fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.1f\" fill=\"%s\" class=\"alive\"/>\n", p.X, p.Y, opts.NodeRadius, colorAlive)
		}
		if opts.Labels {
			fmt.Fprintf(&sb, "<text x=\"%d\" y=\"%d\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\" dy=\"3\">%d</text>\n", p.X, p.Y, colorLabel, i)
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// SeriesSVG draws values as a polyline scaled to fill w x h with a 10%
// margin. Fewer than two values produce an empty string.
func SeriesSVG(values []float64, w, h int, stroke string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	header(&sb, w, h)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(w)
		y := float64(h) - (v-lo)/span*float64(h)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")
	return sb.String()
}

// WriteFile writes an SVG document produced by this package.
func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
