// Package series assembles parsed plot file records into ordered time series.
package series

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"golang.org/x/exp/slices"

	"github.com/b3nn0/redplot/plotfile"
)

// Series is an ordered list of points in file line order. It satisfies
// gonum's plotter.XYer.
type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

func newSeries(name string, n int) *Series {
	return &Series{Name: name, X: make([]float64, 0, n), Y: make([]float64, 0, n)}
}

func (s *Series) add(x, y float64) {
	s.X = append(s.X, x)
	s.Y = append(s.Y, y)
}

func (s *Series) Len() int {
	return len(s.X)
}

func (s *Series) XY(i int) (float64, float64) {
	return s.X[i], s.Y[i]
}

// Monotonic reports whether timestamps never decrease.
func (s *Series) Monotonic() bool {
	return slices.IsSorted(s.X)
}

// Equal reports whether two series hold the same points in the same order.
func (s *Series) Equal(o *Series) bool {
	return s.Name == o.Name && slices.Equal(s.X, o.X) && slices.Equal(s.Y, o.Y)
}

// Mismatch describes an average file whose record count differs from its
// queue file.
type Mismatch struct {
	Series string
	Want   int
	Got    int
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: %d values for %d timestamps", m.Series, m.Got, m.Want)
}

// Queue builds (field0, field1) pairs, both real.
func Queue(name string, recs []plotfile.Record) (*Series, error) {
	s := newSeries(name, len(recs))
	for _, r := range recs {
		t, err := r.Float(0)
		if err != nil {
			return nil, err
		}
		v, err := r.Float(1)
		if err != nil {
			return nil, err
		}
		s.add(t, v)
	}
	return s, nil
}

// Average pairs field 1 of recs with the timestamps of ts by index. Field 0
// is ignored. A length mismatch truncates to the shorter side and is
// returned as a *Mismatch next to the usable series.
func Average(name string, ts *Series, recs []plotfile.Record) (*Series, *Mismatch, error) {
	n := len(recs)
	if ts.Len() < n {
		n = ts.Len()
	}
	s := newSeries(name, n)
	for i := 0; i < n; i++ {
		v, err := recs[i].Float(1)
		if err != nil {
			return nil, nil, err
		}
		s.add(ts.X[i], v)
	}
	if len(recs) != ts.Len() {
		return s, &Mismatch{Series: name, Want: ts.Len(), Got: len(recs)}, nil
	}
	return s, nil, nil
}

// PacketNumbers builds bucketed packet coordinates from
// <timestamp> <seq> <port> records.
func PacketNumbers(name string, recs []plotfile.Record, b plotfile.Bucketing) (*Series, error) {
	s := newSeries(name, len(recs))
	for _, r := range recs {
		t, err := r.Float(0)
		if err != nil {
			return nil, err
		}
		seq, err := r.Int(1)
		if err != nil {
			return nil, err
		}
		port, err := r.Int(2)
		if err != nil {
			return nil, err
		}
		s.add(t, float64(b.PacketCoordinate(seq, port)))
	}
	return s, nil
}

// PacketDrops builds bucketed drop coordinates. The identifier is optional.
func PacketDrops(name string, recs []plotfile.Record, b plotfile.Bucketing) (*Series, error) {
	s := newSeries(name, len(recs))
	for _, r := range recs {
		t, err := r.Float(0)
		if err != nil {
			return nil, err
		}
		c, err := b.DropCoordinate(r)
		if err != nil {
			return nil, err
		}
		s.add(t, float64(c))
	}
	return s, nil
}

// PacketIndexes builds segment indexes from <timestamp> <seq> records.
func PacketIndexes(name string, recs []plotfile.Record, b plotfile.Bucketing) (*Series, error) {
	s := newSeries(name, len(recs))
	for _, r := range recs {
		t, err := r.Float(0)
		if err != nil {
			return nil, err
		}
		seq, err := r.Int(1)
		if err != nil {
			return nil, err
		}
		s.add(t, b.PacketIndex(seq))
	}
	return s, nil
}

// Zeros places a point at y=0 for every timestamp of ts.
func Zeros(name string, ts *Series) *Series {
	s := newSeries(name, ts.Len())
	for _, x := range ts.X {
		s.add(x, 0)
	}
	return s
}

// WriteJSON dumps the series as a JSON array.
func WriteJSON(w io.Writer, all []*Series) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(all)
}
