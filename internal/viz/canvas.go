package viz

import (
	"math"
	"strings"

	"github.com/san-kum/cascadesim/internal/graph"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBlank rune = 0x2800

// Canvas is a grid of braille cells addressed in dot coordinates, so a
// canvas of cols x rows cells is (2*cols) x (4*rows) dots.
type Canvas struct {
	cols, rows int
	cells      []rune
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{cols: max(cols, 1), rows: max(rows, 1)}
	c.cells = make([]rune, c.cols*c.rows)
	c.Clear()
	return c
}

// Dots returns the canvas size in dot coordinates.
func (c *Canvas) Dots() (w, h int) { return c.cols * 2, c.rows * 4 }

func (c *Canvas) cell(x, y int) (idx int, bit rune, ok bool) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return 0, 0, false
	}
	return (y/4)*c.cols + x/2, brailleDots[y%4][x%2], true
}

// Set lights one dot. Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if idx, bit, ok := c.cell(x, y); ok {
		c.cells[idx] |= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	idx, bit, ok := c.cell(x, y)
	return ok && c.cells[idx]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBlank
	}
}

// Line draws a Bresenham segment between two dots, endpoints included.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for r := range c.rows {
		b.WriteString(string(c.cells[r*c.cols : (r+1)*c.cols]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Point is a dot coordinate.
type Point struct{ X, Y int }

// CircleLayout spreads n nodes evenly on the largest circle that fits in a
// w x h dot area, starting at twelve o'clock and going clockwise.
func CircleLayout(n, w, h int) []Point {
	pts := make([]Point, n)
	if n == 0 {
		return pts
	}
	cx, cy := float64(w-1)/2, float64(h-1)/2
	r := math.Max(math.Min(cx, cy)-1, 0)
	for i := range pts {
		a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		pts[i] = Point{
			X: int(math.Round(cx + r*math.Cos(a))),
			Y: int(math.Round(cy + r*math.Sin(a))),
		}
	}
	return pts
}

// DrawGraph draws every surviving edge of g and a small marker on each
// alive node. Dead nodes keep their slot on the circle but are not drawn.
func DrawGraph(c *Canvas, g *graph.Graph) []Point {
	w, h := c.Dots()
	pts := CircleLayout(g.NodeCount(), w, h)
	for i := range g.IterAlive() {
		for _, j := range g.Neighbors(i) {
			if j > i {
				p, q := pts[i], pts[j]
				c.Line(p.X, p.Y, q.X, q.Y)
			}
		}
	}
	for i := range g.IterAlive() {
		p := pts[i]
		for _, d := range [][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			c.Set(p.X+d[0], p.Y+d[1])
		}
	}
	return pts
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
