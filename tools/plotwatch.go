/*
	plotwatch.go: Re-render a RED queue figure every second while a
	simulation is still writing its .plot files, and serve it over HTTP.

	go run tools/plotwatch.go -data ./p2a -addr :8080
*/

package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/b3nn0/redplot/chart"
	"github.com/b3nn0/redplot/figures"
	"github.com/b3nn0/redplot/logging"
	"github.com/b3nn0/redplot/metrics"
	"github.com/b3nn0/redplot/viewer"
)

func frame(kind figures.Kind, loader *figures.Loader) (string, []byte, error) {
	res, err := figures.Build(kind, loader, figures.DefaultOptions())
	if err != nil {
		return "", nil, err
	}
	c, err := chart.Render(res.Figure, 20*vg.Centimeter, 16*vg.Centimeter, "png")
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return "", nil, err
	}
	return res.Figure.Title, buf.Bytes(), nil
}

func imageWriter(ctx context.Context, kind figures.Kind, loader *figures.Loader, im *viewer.Image, every time.Duration) {
	log := logging.With("plotwatch")
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		// Partial files are expected mid-run. Keep the last good frame.
		if title, png, err := frame(kind, loader); err != nil {
			log.Warn().Err(err).Msg("render failed")
		} else {
			im.Set(title, png)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func main() {
	figure := flag.String("figure", string(figures.SingleGate), "single-gate or dual-gate")
	data := flag.String("data", "", "Directory holding the .plot files")
	addr := flag.String("addr", ":8080", "Listen address")
	every := flag.Duration("every", time.Second, "Render interval")
	flag.Parse()

	kind, err := figures.ParseKind(*figure)
	if err != nil {
		logging.Error().Err(err).Msg("bad -figure")
		os.Exit(2)
	}
	dir := *data
	if dir == "" {
		dir = figures.DefaultDir(kind)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec := metrics.New()
	im := &viewer.Image{}
	loader := &figures.Loader{Dir: dir, Observer: rec, Log: logging.With("figures")}
	go imageWriter(ctx, kind, loader, im, *every)

	if err := viewer.Serve(ctx, *addr, viewer.Handler(im, *every, rec.Handler()), logging.With("viewer")); err != nil {
		logging.Error().Err(err).Msg("plotwatch ListenAndServe")
		os.Exit(1)
	}
}
