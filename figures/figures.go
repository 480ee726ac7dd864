// Package figures builds the RED-queue charts from a simulation output
// directory. Files are read one after another in a fixed order and each
// builder returns the chart description together with the series behind it.
package figures

import (
	"fmt"
	"path/filepath"

	"github.com/b3nn0/redplot/chart"
	"github.com/b3nn0/redplot/plotfile"
	"github.com/b3nn0/redplot/series"
)

// Kind names a figure layout.
type Kind string

const (
	// SingleGate is one RED queue shared by four connections (P2a, P2b runs).
	SingleGate Kind = "single-gate"
	// DualGate is two RED gates A and B (P2c run).
	DualGate Kind = "dual-gate"
)

// ParseKind validates a figure name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case SingleGate, DualGate:
		return k, nil
	}
	return "", fmt.Errorf("unknown figure %q", s)
}

// DefaultDir is where the plotting scripts looked for each layout.
func DefaultDir(k Kind) string {
	if k == DualGate {
		return "./p2c"
	}
	return "./p2a"
}

// Options tune how records become series.
type Options struct {
	Bucketing plotfile.Bucketing
	// Strict fails on out-of-order timestamps and average/queue count mismatches.
	Strict bool
	// StopTime is the right end of the band separator lines.
	StopTime float64
}

// DefaultOptions reproduces the published P2 plots.
func DefaultOptions() Options {
	return Options{Bucketing: plotfile.DefaultBucketing(), StopTime: 1}
}

// Result is a built figure and the series plotted in it.
type Result struct {
	Kind   Kind
	Dir    string
	Figure chart.Figure
	Series []*series.Series
}

// builder accumulates series and enforces the strict checks.
type builder struct {
	l    *Loader
	opts Options
	all  []*series.Series
}

func (b *builder) keep(s *series.Series) (*series.Series, error) {
	if !s.Monotonic() {
		if b.opts.Strict {
			return nil, fmt.Errorf("%s: timestamps are not in order", s.Name)
		}
		b.l.Log.Warn().Str("series", s.Name).Msg("timestamps are not in order")
	}
	b.all = append(b.all, s)
	b.l.observer().ObserveSeries(s.Name, s.Len())
	return s, nil
}

func (b *builder) queue(name, file string) (*series.Series, error) {
	recs, err := b.l.Load(file)
	if err != nil {
		return nil, err
	}
	s, err := series.Queue(name, recs)
	if err != nil {
		return nil, err
	}
	return b.keep(s)
}

func (b *builder) average(name, file string, ts *series.Series) (*series.Series, error) {
	recs, err := b.l.Load(file)
	if err != nil {
		return nil, err
	}
	s, mm, err := series.Average(name, ts, recs)
	if err != nil {
		return nil, err
	}
	if mm != nil {
		if b.opts.Strict {
			return nil, mm
		}
		b.l.Log.Warn().Str("series", name).Int("timestamps", mm.Want).Int("values", mm.Got).
			Msg("average file length differs from queue file, truncating")
	}
	return b.keep(s)
}

type packetFunc func(string, []plotfile.Record, plotfile.Bucketing) (*series.Series, error)

func (b *builder) packets(name, file string, fn packetFunc) (*series.Series, error) {
	recs, err := b.l.Load(file)
	if err != nil {
		return nil, err
	}
	s, err := fn(name, recs, b.opts.Bucketing)
	if err != nil {
		return nil, err
	}
	return b.keep(s)
}

func (b *builder) zeros(name string, ts *series.Series) *series.Series {
	s := series.Zeros(name, ts)
	b.all = append(b.all, s)
	b.l.observer().ObserveSeries(s.Name, s.Len())
	return s
}

// Build reads the files for k from l.Dir and assembles its figure.
func Build(k Kind, l *Loader, opts Options) (*Result, error) {
	b := &builder{l: l, opts: opts}
	var (
		fig chart.Figure
		err error
	)
	switch k {
	case SingleGate:
		fig, err = b.singleGate()
	case DualGate:
		fig, err = b.dualGate()
	default:
		return nil, fmt.Errorf("unknown figure %q", k)
	}
	if err != nil {
		return nil, fmt.Errorf("%s figure from %s: %w", k, l.Dir, err)
	}
	fig.Title = fmt.Sprintf("RED queue, %s (%s)", k, filepath.Base(l.Dir))
	return &Result{Kind: k, Dir: l.Dir, Figure: fig, Series: b.all}, nil
}

func (b *builder) bandLines() []chart.HLine {
	seps := b.opts.Bucketing.Separators()
	lines := make([]chart.HLine, len(seps))
	for i, y := range seps {
		lines[i] = chart.HLine{Y: y, XMin: 0, XMax: b.opts.StopTime}
	}
	return lines
}

func (b *builder) singleGate() (chart.Figure, error) {
	q, err := b.queue("queue", "redQueue.plot")
	if err != nil {
		return chart.Figure{}, err
	}
	avg, err := b.average("queue_avg", "redQueueAvg.plot", q)
	if err != nil {
		return chart.Figure{}, err
	}
	pn, err := b.packets("packet_num", "PacketNum.plot", series.PacketNumbers)
	if err != nil {
		return chart.Figure{}, err
	}
	pd, err := b.packets("packet_drop", "PacketDrop.plot", series.PacketDrops)
	if err != nil {
		return chart.Figure{}, err
	}

	return chart.Figure{Panels: []chart.Panel{
		{
			XLabel: "Time",
			YLabel: "Queue",
			Layers: []chart.Layer{
				{Label: "Queue Size", Style: chart.Solid, Data: q},
				{Label: "Average Queue Size", Style: chart.Dashed, Data: avg},
			},
		},
		{
			XLabel: "Time",
			YLabel: fmt.Sprintf("Packet Number(mod %d) For Four Connections", b.opts.Bucketing.Modulus),
			Layers: []chart.Layer{
				{Label: "PacketNum", Style: chart.Dots, Data: pn},
				{Label: "PacketDrop", Style: chart.Crosses, Data: pd},
			},
			YTicks: b.opts.Bucketing.Ticks(),
			HLines: b.bandLines(),
		},
	}}, nil
}

func (b *builder) gatePanel(gate string, q, avg, drops *series.Series) chart.Panel {
	return chart.Panel{
		XLabel: "Time",
		YLabel: "Queue for gate " + gate,
		Layers: []chart.Layer{
			{Label: "QueueSize", Style: chart.Solid, Data: q},
			{Label: "Average QueueSize", Style: chart.Dashed, Data: avg},
			{Label: "PacketDropSize" + gate, Style: chart.Crosses, Data: drops},
		},
	}
}

func (b *builder) dualGate() (chart.Figure, error) {
	qa, err := b.queue("queue_a", "redQueueA.plot")
	if err != nil {
		return chart.Figure{}, err
	}
	avga, err := b.average("queue_a_avg", "redQueueAAvg.plot", qa)
	if err != nil {
		return chart.Figure{}, err
	}
	qb, err := b.queue("queue_b", "redQueueB.plot")
	if err != nil {
		return chart.Figure{}, err
	}
	avgb, err := b.average("queue_b_avg", "redQueueBAvg.plot", qb)
	if err != nil {
		return chart.Figure{}, err
	}
	pna, err := b.packets("packet_num_a", "PacketNumA.plot", series.PacketIndexes)
	if err != nil {
		return chart.Figure{}, err
	}
	pda, err := b.packets("packet_drop_a", "PacketDropA.plot", series.PacketIndexes)
	if err != nil {
		return chart.Figure{}, err
	}
	pdb, err := b.packets("packet_drop_b", "PacketDropB.plot", series.PacketIndexes)
	if err != nil {
		return chart.Figure{}, err
	}
	za := b.zeros("drop_size_a", pda)
	zb := b.zeros("drop_size_b", pdb)

	packets := chart.Panel{
		XLabel: "Time",
		YLabel: "Packet Number For Each Connections",
		Layers: []chart.Layer{
			{Label: "PacketNum", Style: chart.Dots, Data: pna},
		},
	}

	// The simulator writes gate B arrivals too. The old plots left them out.
	recs, ok, err := b.l.LoadOptional("PacketNumB.plot")
	if err != nil {
		return chart.Figure{}, err
	}
	if ok {
		s, err := series.PacketIndexes("packet_num_b", recs, b.opts.Bucketing)
		if err != nil {
			return chart.Figure{}, err
		}
		if _, err := b.keep(s); err != nil {
			return chart.Figure{}, err
		}
		packets.Layers = append(packets.Layers, chart.Layer{Label: "PacketNumB", Style: chart.Dots, Data: s})
	}

	packets.Layers = append(packets.Layers,
		chart.Layer{Label: "PacketDropA", Style: chart.Crosses, Data: pda},
		chart.Layer{Label: "PacketDropB", Style: chart.Crosses, Data: pdb},
		chart.Layer{Label: "PacketDropSizeA", Style: chart.Crosses, Data: za},
		chart.Layer{Label: "PacketDropSizeB", Style: chart.Crosses, Data: zb},
	)

	return chart.Figure{Panels: []chart.Panel{
		b.gatePanel("A", qa, avga, za),
		b.gatePanel("B", qb, avgb, zb),
		packets,
	}}, nil
}
