package archive

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/b3nn0/redplot/series"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "redplot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestStoreLoad(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	in := []*series.Series{
		{Name: "queue", X: []float64{0.01, 0.02, 0.03}, Y: []float64{0, 3, 1}},
		{Name: "packet_drop", X: []float64{}, Y: []float64{}},
		{Name: "avg", X: []float64{0.01}, Y: []float64{2.5}},
	}
	id, err := a.Store(ctx, "single-gate", "p2a", in)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	out, err := a.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("loaded %d series, want %d", len(out), len(in))
	}
	for i := range in {
		if !in[i].Equal(out[i]) {
			t.Errorf("series %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestRuns(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	s := []*series.Series{{Name: "q", X: []float64{1}, Y: []float64{1}}}
	first, err := a.Store(ctx, "single-gate", "p2a", s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Store(ctx, "dual-gate", "p2c", s)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := a.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Figure != "dual-gate" || runs[0].DataDir != "p2c" {
		t.Errorf("newest run = %+v", runs[0])
	}
}

func TestLoadUnknownRun(t *testing.T) {
	a := openTemp(t)
	_, err := a.Load(context.Background(), 42)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Load error = %v, want sql.ErrNoRows", err)
	}
}
