// Package chart renders stacked time-series panels with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Style selects how a layer is drawn.
type Style int

const (
	Solid Style = iota
	Dashed
	Dots
	Crosses
)

func (s Style) String() string {
	switch s {
	case Solid:
		return "solid"
	case Dashed:
		return "dashed"
	case Dots:
		return "dots"
	case Crosses:
		return "crosses"
	}
	return "unknown"
}

// Layer is one labelled series on a panel.
type Layer struct {
	Label string
	Style Style
	Data  plotter.XYer
}

// HLine is a dashed horizontal reference line from XMin to XMax.
type HLine struct {
	Y    float64
	XMin float64
	XMax float64
}

// Panel is one subplot.
type Panel struct {
	XLabel string
	YLabel string
	Layers []Layer
	// Explicit Y tick positions. Nil keeps gonum's default ticks.
	YTicks []float64
	HLines []HLine
}

// Figure is a vertical stack of panels sharing one image.
type Figure struct {
	Title  string
	Panels []Panel
}

var dashes = []vg.Length{vg.Points(5), vg.Points(3)}

func constantTicks(vals []float64) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(vals))
	for i, v := range vals {
		ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return ticks
}

// layerPlotter returns the plotter for l and the thumbnailer for its legend entry.
func layerPlotter(l Layer, c color.Color) (plot.Plotter, plot.Thumbnailer, error) {
	switch l.Style {
	case Solid, Dashed:
		line, err := plotter.NewLine(l.Data)
		if err != nil {
			return nil, nil, err
		}
		line.Color = c
		if l.Style == Dashed {
			line.Dashes = dashes
		}
		return line, line, nil
	case Dots, Crosses:
		sc, err := plotter.NewScatter(l.Data)
		if err != nil {
			return nil, nil, err
		}
		sc.GlyphStyle.Color = c
		if l.Style == Dots {
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			sc.GlyphStyle.Radius = vg.Points(1)
		} else {
			sc.GlyphStyle.Shape = draw.CrossGlyph{}
			sc.GlyphStyle.Radius = vg.Points(3)
		}
		return sc, sc, nil
	}
	return nil, nil, fmt.Errorf("unknown style %d", l.Style)
}

// NewPlot builds the gonum plot for one panel.
func NewPlot(p Panel) (*plot.Plot, error) {
	pl := plot.New()
	pl.X.Label.Text = p.XLabel
	pl.Y.Label.Text = p.YLabel
	pl.Legend.Top = true

	for i, l := range p.Layers {
		pt, thumb, err := layerPlotter(l, plotutil.Color(i))
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Label, err)
		}
		// Empty series keep their legend entry but add nothing to the axes.
		if l.Data.Len() > 0 {
			pl.Add(pt)
		}
		pl.Legend.Add(l.Label, thumb)
	}

	for _, h := range p.HLines {
		line, err := plotter.NewLine(plotter.XYs{{X: h.XMin, Y: h.Y}, {X: h.XMax, Y: h.Y}})
		if err != nil {
			return nil, err
		}
		line.Dashes = dashes
		line.Color = color.Gray{Y: 0x40}
		pl.Add(line)
	}

	if p.YTicks != nil {
		pl.Y.Tick.Marker = constantTicks(p.YTicks)
		lo, hi := p.YTicks[0], p.YTicks[len(p.YTicks)-1]
		if lo < pl.Y.Min {
			pl.Y.Min = lo
		}
		if hi > pl.Y.Max {
			pl.Y.Max = hi
		}
	}
	return pl, nil
}

// Canvas formats understood by Render.
var formats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"svg": true, "pdf": true,
}

func newCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		c := vgimg.New(w, h)
		switch format {
		case "png":
			return vgimg.PngCanvas{Canvas: c}, nil
		case "jpg", "jpeg":
			return vgimg.JpegCanvas{Canvas: c}, nil
		default:
			return vgimg.TiffCanvas{Canvas: c}, nil
		}
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	}
	return nil, fmt.Errorf("unsupported chart format %q", format)
}

// Render draws all panels of f stacked top to bottom onto a canvas of the
// given format.
func Render(f Figure, w, h vg.Length, format string) (vg.CanvasWriterTo, error) {
	format = strings.ToLower(format)
	if !formats[format] {
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}
	if len(f.Panels) == 0 {
		return nil, fmt.Errorf("figure %q has no panels", f.Title)
	}

	plots := make([][]*plot.Plot, len(f.Panels))
	for i, p := range f.Panels {
		pl, err := NewPlot(p)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", i, err)
		}
		plots[i] = []*plot.Plot{pl}
	}
	if f.Title != "" {
		plots[0][0].Title.Text = f.Title
	}

	c, err := newCanvas(format, w, h)
	if err != nil {
		return nil, err
	}
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}
	return c, nil
}

// Format returns the canvas format for an output path, from its extension.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Save renders f and writes it to path.
func Save(f Figure, w, h vg.Length, path string) error {
	c, err := Render(f, w, h, Format(path))
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
