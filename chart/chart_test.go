package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func testFigure(empty bool) Figure {
	q := plotter.XYs{{X: 0.01, Y: 1}, {X: 0.02, Y: 4}, {X: 0.03, Y: 2}}
	pn := plotter.XYs{{X: 0.01, Y: 10}, {X: 0.02, Y: 110}, {X: 0.03, Y: 250}}
	if empty {
		q = plotter.XYs{}
		pn = plotter.XYs{}
	}
	return Figure{
		Title: "test",
		Panels: []Panel{
			{
				XLabel: "Time",
				YLabel: "Queue",
				Layers: []Layer{
					{Label: "Queue Size", Style: Solid, Data: q},
					{Label: "Average Queue Size", Style: Dashed, Data: q},
				},
			},
			{
				XLabel: "Time",
				YLabel: "Packet Number",
				Layers: []Layer{
					{Label: "PacketNum", Style: Dots, Data: pn},
					{Label: "PacketDrop", Style: Crosses, Data: plotter.XYs{}},
				},
				YTicks: []float64{0, 100, 200, 300, 400},
				HLines: []HLine{{Y: 100, XMax: 1}, {Y: 200, XMax: 1}, {Y: 300, XMax: 1}},
			},
		},
	}
}

func TestRenderPNG(t *testing.T) {
	for _, empty := range []bool{false, true} {
		c, err := Render(testFigure(empty), 6*vg.Inch, 6*vg.Inch, "png")
		if err != nil {
			t.Fatalf("Render(empty=%v): %v", empty, err)
		}
		var buf bytes.Buffer
		if _, err := c.WriteTo(&buf); err != nil {
			t.Fatalf("WriteTo: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
			t.Errorf("output is not a PNG (empty=%v)", empty)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	c, err := Render(testFigure(false), 6*vg.Inch, 6*vg.Inch, "SVG")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("output is not SVG")
	}
	for _, label := range []string{"Queue Size", "PacketDrop", "Packet Number"} {
		if !strings.Contains(out, label) {
			t.Errorf("SVG missing label %q", label)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(testFigure(false), vg.Inch, vg.Inch, "bmp"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := Render(Figure{}, vg.Inch, vg.Inch, "png"); err == nil {
		t.Error("expected error for a figure without panels")
	}
}

func TestNewPlotTicks(t *testing.T) {
	p, err := NewPlot(testFigure(true).Panels[1])
	if err != nil {
		t.Fatal(err)
	}
	ticks, ok := p.Y.Tick.Marker.(plot.ConstantTicks)
	if !ok {
		t.Fatalf("Y tick marker is %T, want plot.ConstantTicks", p.Y.Tick.Marker)
	}
	if len(ticks) != 5 || ticks[4].Label != "400" {
		t.Errorf("ticks = %+v", ticks)
	}
	if p.Y.Min > 0 || p.Y.Max < 400 {
		t.Errorf("Y range = [%v, %v], want to cover [0, 400]", p.Y.Min, p.Y.Max)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fig.pdf")
	if err := Save(testFigure(false), 4*vg.Inch, 4*vg.Inch, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
	if Format("out/Chart.PNG") != "png" {
		t.Errorf("Format = %q", Format("out/Chart.PNG"))
	}
}
