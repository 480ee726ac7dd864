package plotfile

import (
	"golang.org/x/exp/constraints"
)

const (
	// TCP segment size used by the simulations: 1000 bytes less 42 bytes of headers.
	SegmentSize = 1000 - 42

	DefaultModulus  = 90
	DefaultBand     = 100
	DefaultBasePort = 8081
	DefaultDropBase = 1

	// Number of connections multiplexed onto one bucketed axis.
	Connections = 4
)

// Bucketing folds a sequence counter and a connection identifier into one
// bounded display coordinate, one band per connection.
type Bucketing struct {
	Divisor  int64
	Modulus  int64
	Band     int64
	BasePort int64
	DropBase int64
}

// DefaultBucketing returns the constants the RED simulations were plotted with.
func DefaultBucketing() Bucketing {
	return Bucketing{
		Divisor:  SegmentSize,
		Modulus:  DefaultModulus,
		Band:     DefaultBand,
		BasePort: DefaultBasePort,
		DropBase: DefaultDropBase,
	}
}

// floorMod returns a mod m in [0, m) for m > 0.
func floorMod[T constraints.Integer](a, m T) T {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// PacketCoordinate maps a byte sequence number and destination port onto the
// shared packet axis. seq/Divisor counts segments.
func (b Bucketing) PacketCoordinate(seq, port int64) int64 {
	return floorMod(seq/b.Divisor, b.Modulus) + (port-b.BasePort)*b.Band
}

// DropCoordinate maps a packet drop record onto the packet axis. Records
// without a connection identifier land on 0.
func (b Bucketing) DropCoordinate(r Record) (int64, error) {
	if r.Len() < 3 {
		return 0, nil
	}
	seq, err := r.Int(1)
	if err != nil {
		return 0, err
	}
	id, err := r.Int(2)
	if err != nil {
		return 0, err
	}
	return floorMod(seq, b.Modulus) + (id-b.DropBase)*b.Band, nil
}

// PacketIndex converts a byte sequence number to a 0-based segment index.
func (b Bucketing) PacketIndex(seq int64) float64 {
	return float64(seq-1) / float64(b.Divisor)
}

// Ticks returns the band boundaries 0, Band, ... Connections*Band.
func (b Bucketing) Ticks() []float64 {
	ticks := make([]float64, 0, Connections+1)
	for i := int64(0); i <= Connections; i++ {
		ticks = append(ticks, float64(i*b.Band))
	}
	return ticks
}

// Separators returns the inner band boundaries.
func (b Bucketing) Separators() []float64 {
	t := b.Ticks()
	return t[1 : len(t)-1]
}
