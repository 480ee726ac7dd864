package viewer

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/b3nn0/redplot/chart"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B4BEFE"))
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	layerStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#94E2D5")),
	}
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	yLabelWidth   = 8
	cellEmpty     = -1
	cellRef       = -2
)

func glyph(s chart.Style) rune {
	switch s {
	case chart.Solid:
		return '*'
	case chart.Dashed:
		return '+'
	case chart.Dots:
		return '.'
	case chart.Crosses:
		return 'x'
	}
	return '?'
}

func layerStyle(i int) lipgloss.Style {
	return layerStyles[i%len(layerStyles)]
}

type bounds struct {
	xmin, xmax, ymin, ymax float64
}

func (b *bounds) add(x, y float64) {
	b.xmin = math.Min(b.xmin, x)
	b.xmax = math.Max(b.xmax, x)
	b.ymin = math.Min(b.ymin, y)
	b.ymax = math.Max(b.ymax, y)
}

func (b *bounds) empty() bool {
	return b.xmin > b.xmax
}

func panelBounds(p chart.Panel) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, l := range p.Layers {
		for i := 0; i < l.Data.Len(); i++ {
			b.add(l.Data.XY(i))
		}
	}
	for _, h := range p.HLines {
		b.add(h.XMin, h.Y)
		b.add(h.XMax, h.Y)
	}
	for _, t := range p.YTicks {
		if !b.empty() {
			b.ymin = math.Min(b.ymin, t)
			b.ymax = math.Max(b.ymax, t)
		}
	}
	if b.xmin == b.xmax {
		b.xmin--
		b.xmax++
	}
	if b.ymin == b.ymax {
		b.ymin--
		b.ymax++
	}
	return b
}

func scale(v, lo, hi float64, n int) int {
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// renderPanel draws p as a width x height character grid with axes and a legend.
func renderPanel(p chart.Panel, width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(p.YLabel) + "\n")

	b := panelBounds(p)
	if b.empty() {
		s.WriteString(axisStyle.Render("(no data)") + "\n")
		s.WriteString(legend(p))
		return s.String()
	}

	cells := make([][]int, height)
	for r := range cells {
		cells[r] = make([]int, width)
		for c := range cells[r] {
			cells[r][c] = cellEmpty
		}
	}
	for _, h := range p.HLines {
		row := height - 1 - scale(h.Y, b.ymin, b.ymax, height)
		for c := scale(h.XMin, b.xmin, b.xmax, width); c <= scale(h.XMax, b.xmin, b.xmax, width); c++ {
			cells[row][c] = cellRef
		}
	}
	for i, l := range p.Layers {
		for j := 0; j < l.Data.Len(); j++ {
			x, y := l.Data.XY(j)
			row := height - 1 - scale(y, b.ymin, b.ymax, height)
			cells[row][scale(x, b.xmin, b.xmax, width)] = i
		}
	}

	for r, row := range cells {
		label := strings.Repeat(" ", yLabelWidth)
		switch r {
		case 0:
			label = fmt.Sprintf("%*.4g", yLabelWidth, b.ymax)
		case height - 1:
			label = fmt.Sprintf("%*.4g", yLabelWidth, b.ymin)
		}
		var line strings.Builder
		line.WriteString(axisStyle.Render(label + "│"))
		for _, c := range row {
			switch c {
			case cellEmpty:
				line.WriteByte(' ')
			case cellRef:
				line.WriteString(axisStyle.Render("┄"))
			default:
				line.WriteString(layerStyle(c).Render(string(glyph(p.Layers[c].Style))))
			}
		}
		s.WriteString(line.String() + "\n")
	}
	s.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelWidth)+"└"+strings.Repeat("─", width)) + "\n")

	lo := fmt.Sprintf("%.4g", b.xmin)
	hi := fmt.Sprintf("%.4g", b.xmax)
	gap := width - len(lo) - len(hi) - len(p.XLabel)
	if gap < 2 {
		gap = 2
	}
	axis := lo + strings.Repeat(" ", gap/2) + p.XLabel + strings.Repeat(" ", gap-gap/2) + hi
	s.WriteString(axisStyle.Render(strings.Repeat(" ", yLabelWidth+1)+axis) + "\n")
	s.WriteString(legend(p))
	return s.String()
}

func legend(p chart.Panel) string {
	parts := make([]string, 0, len(p.Layers))
	for i, l := range p.Layers {
		parts = append(parts, layerStyle(i).Render(string(glyph(l.Style)))+" "+l.Label+fmt.Sprintf(" (%d)", l.Data.Len()))
	}
	return strings.Join(parts, "  ") + "\n"
}

// Terminal is a bubbletea model showing every panel of a figure.
type Terminal struct {
	fig    chart.Figure
	width  int
	height int
}

func NewTerminal(fig chart.Figure) Terminal {
	return Terminal{fig: fig, width: defaultWidth, height: defaultHeight}
}

func (m Terminal) Init() tea.Cmd {
	return nil
}

func (m Terminal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Terminal) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(m.fig.Title) + "\n\n")

	n := len(m.fig.Panels)
	if n == 0 {
		s.WriteString("(empty figure)\n")
	} else {
		// Each panel spends 4 lines on label, x axis, x range and legend.
		rows := (m.height-4)/n - 4
		if rows < 3 {
			rows = 3
		}
		cols := m.width - yLabelWidth - 2
		if cols < 20 {
			cols = 20
		}
		for _, p := range m.fig.Panels {
			s.WriteString(renderPanel(p, cols, rows))
		}
	}
	s.WriteString(axisStyle.Render("q: quit"))
	return s.String()
}

// RunTerminal shows fig full screen until the user quits.
func RunTerminal(fig chart.Figure) error {
	_, err := tea.NewProgram(NewTerminal(fig), tea.WithAltScreen()).Run()
	return err
}
