package figures

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/b3nn0/redplot/common"
	"github.com/b3nn0/redplot/plotfile"
)

// Observer is told about every plot file read and series assembled.
type Observer interface {
	ObserveFile(name string, records int, size int64, d time.Duration)
	ObserveSeries(name string, points int)
}

type nopObserver struct{}

func (nopObserver) ObserveFile(string, int, int64, time.Duration) {}
func (nopObserver) ObserveSeries(string, int)                     {}

// Loader reads plot files out of one simulation output directory.
type Loader struct {
	Dir      string
	Observer Observer
	Log      zerolog.Logger
}

func (l *Loader) observer() Observer {
	if l.Observer == nil {
		return nopObserver{}
	}
	return l.Observer
}

// Load reads Dir/name. Missing or unreadable files are errors.
func (l *Loader) Load(name string) ([]plotfile.Record, error) {
	path := filepath.Join(l.Dir, name)
	start := time.Now()
	recs, err := plotfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d := time.Since(start)

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}
	l.observer().ObserveFile(name, len(recs), size, d)
	l.Log.Debug().
		Str("file", path).
		Str("records", common.HumanCount(len(recs))).
		Str("size", common.HumanBytes(size)).
		Dur("took", d).
		Msg("read plot file")
	return recs, nil
}

// LoadOptional is Load that returns ok=false for a file that does not exist.
func (l *Loader) LoadOptional(name string) ([]plotfile.Record, bool, error) {
	recs, err := l.Load(name)
	if errors.Is(err, os.ErrNotExist) {
		l.Log.Debug().Str("file", filepath.Join(l.Dir, name)).Msg("optional plot file absent, skipping")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return recs, true, nil
}
