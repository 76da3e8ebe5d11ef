package viz

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
)

const (
	layoutCols = 36
	layoutRows = 12
	tableRows  = 10
	sparkWidth = 32
)

// Browser is a Bubble Tea model over a finished run. It only moves the
// history's display cursor; iterations are never modified.
type Browser struct {
	history    *cascade.History
	status     cascade.Status
	title      string
	theme      int
	styles     Styles
	showLayout bool
	width      int
	height     int
}

func NewBrowser(h *cascade.History, status cascade.Status, title string) Browser {
	return Browser{
		history:    h,
		status:     status,
		title:      title,
		styles:     NewStyles(Themes[0]),
		showLayout: true,
		width:      80,
		height:     24,
	}
}

// WithTheme selects a theme by name; unknown names keep the current one.
func (b Browser) WithTheme(name string) Browser {
	for i, t := range Themes {
		if t.Name == name {
			b.theme, b.styles = i, NewStyles(t)
		}
	}
	return b
}

func (b Browser) Theme() Theme { return Themes[b.theme] }

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return b, tea.Quit
		case "right", "l", "n":
			b.history.Next()
		case "left", "h", "p":
			b.history.Prev()
		case "home", "g":
			b.history.SetCurrentIter(0)
		case "end", "G":
			b.history.SetCurrentIter(b.history.IterCount() - 1)
		case "v":
			b.showLayout = !b.showLayout
		case "t":
			b.theme = (b.theme + 1) % len(Themes)
			b.styles = NewStyles(Themes[b.theme])
		}
	}
	return b, nil
}

func (b Browser) View() string {
	h := b.history
	cur := h.CurrentIter()
	it := h.Current()
	s := b.styles

	var out strings.Builder
	out.WriteString("\n  " + s.Title.Render("CASCADESIM") + "  " + s.Sub.Render(b.title) + "\n")
	out.WriteString("  " + s.Sub.Render(strings.Repeat("─", 40)) + "\n\n")

	out.WriteString(fmt.Sprintf("  %s %s   %s   α=%s\n",
		s.Label.Render("status"), b.styles.Status(b.status),
		s.Value.Render(fmt.Sprintf("iteration %d/%d", cur+1, h.IterCount())),
		s.Value.Render(fmt.Sprintf("%g", h.Alpha)),
	))

	alive, total := it.Graph.Alive(), it.Graph.NodeCount()
	out.WriteString(fmt.Sprintf("  %s %s %s\n", s.Label.Render("alive"),
		s.Value.Render(fmt.Sprintf("%d/%d", alive, total)),
		s.Graph.Render(Bar(float64(alive)/float64(max(total, 1)), 20))))
	out.WriteString(b.row("edges", fmt.Sprintf("%d", it.Graph.Edges())))

	m := it.Metrics
	out.WriteString(b.row("zmax", fmt.Sprintf("%.4f", m.Zmax)))
	out.WriteString(b.row("beta", fmt.Sprintf("%.4f", m.Beta)))
	out.WriteString(b.row("beta delta", fmt.Sprintf("%.4f", m.BetaDelta)))
	out.WriteString(b.row("most loaded", nodeLabel(m.MaxBetweenness)))
	out.WriteString(b.row("least cap", nodeLabel(m.MinCapacity)))
	out.WriteString(b.row("removed", b.removalText(cur)))

	ks := h.KS()
	out.WriteString(b.row("k", s.Graph.Render(Sparkline(ks, min(len(ks), sparkWidth)))))
	out.WriteString("\n")

	var body string
	if b.showLayout {
		c := NewCanvas(layoutCols, layoutRows)
		DrawGraph(c, it.Graph)
		body = s.Graph.Render(strings.TrimRight(c.String(), "\n"))
	} else {
		body = b.nodeTable(it)
	}
	out.WriteString(lipgloss.NewStyle().MarginLeft(2).Render(s.Panel.Render(body)) + "\n\n")

	out.WriteString("  " + b.help() + "\n")
	return out.String()
}

func (b Browser) row(label, value string) string {
	return "  " + b.styles.Label.Render(label) + " " + b.styles.Value.Render(value) + "\n"
}

// removalText describes the nodes deleted by the round that produced
// iteration i. Iteration 0 is the input graph.
func (b Browser) removalText(i int) string {
	if i == 0 {
		return "initial topology"
	}
	for _, r := range b.history.Removals() {
		if r.Round != i {
			continue
		}
		parts := []string{"max " + nodeLabel(r.Max)}
		if len(r.Overloaded) > 0 {
			ids := make([]string, len(r.Overloaded))
			for k, n := range r.Overloaded {
				ids[k] = fmt.Sprintf("%d", uint32(n))
			}
			parts = append(parts, "overloaded "+strings.Join(ids, ","))
		}
		return strings.Join(parts, "; ")
	}
	return "-"
}

// nodeTable lists the most loaded alive nodes of it.
func (b Browser) nodeTable(it cascade.Iteration) string {
	type entry struct {
		node graph.Node
		load int
		capa float64
		z    float64
	}
	m := it.Metrics
	var rows []entry
	for n := range it.Graph.IterAlive() {
		rows = append(rows, entry{n, m.Betweenness.At(n), m.Capacity.At(n), m.Z.At(n)})
	}
	slices.SortStableFunc(rows, func(x, y entry) int {
		return cmp.Compare(y.load, x.load)
	})

	var t strings.Builder
	t.WriteString(b.styles.Title.Render(fmt.Sprintf("%-6s %12s %12s %10s", "node", "betweenness", "capacity", "z")) + "\n")
	for _, r := range rows[:min(len(rows), tableRows)] {
		line := fmt.Sprintf("%-6d %12d %12.2f %10.4f", uint32(r.node), r.load, r.capa, r.z)
		if r.node == m.MaxBetweenness {
			line = b.styles.Select.Render(line)
		}
		t.WriteString(line + "\n")
	}
	if len(rows) > tableRows {
		t.WriteString(b.styles.Sub.Render(fmt.Sprintf("... %d more", len(rows)-tableRows)))
	}
	return strings.TrimRight(t.String(), "\n")
}

func (b Browser) help() string {
	k, d := b.styles.Key, b.styles.Hint
	return k.Render("h/l") + d.Render(" scrub  ") +
		k.Render("g/G") + d.Render(" first/last  ") +
		k.Render("v") + d.Render(" layout/table  ") +
		k.Render("t") + d.Render(" theme  ") +
		k.Render("q") + d.Render(" quit")
}

func nodeLabel(n graph.Node) string {
	if !n.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d", uint32(n))
}

// RunBrowser takes over the terminal until the user quits.
func RunBrowser(b Browser) error {
	_, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	return err
}
