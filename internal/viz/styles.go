package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cascadesim/internal/cascade"
)

// Styles is the set of lipgloss styles derived from one Theme.
type Styles struct {
	Title  lipgloss.Style
	Sub    lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Key    lipgloss.Style
	Hint   lipgloss.Style
	Select lipgloss.Style
	Panel  lipgloss.Style
	Graph  lipgloss.Style

	running, converged, halted, exhausted lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Sub:    lipgloss.NewStyle().Foreground(t.Muted),
		Label:  lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value:  lipgloss.NewStyle().Foreground(t.Text),
		Key:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Hint:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Select: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Graph: lipgloss.NewStyle().Foreground(t.Accent),

		running:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		converged: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		halted:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		exhausted: lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
	}
}

// Status renders a run status in its theme color.
func (s Styles) Status(st cascade.Status) string {
	style := s.running
	switch st {
	case cascade.Converged:
		style = s.converged
	case cascade.HaltedDisconnected:
		style = s.halted
	case cascade.Exhausted:
		style = s.exhausted
	}
	return style.Render(st.String())
}

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// Sparkline scales values into one row of block characters. Longer inputs
// are sampled down to width.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := min(max(int(norm*float64(len(sparkChars)-1)), 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// Bar draws a filled/empty gauge for fraction in [0, 1].
func Bar(fraction float64, width int) string {
	filled := min(max(int(fraction*float64(width)+0.5), 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
