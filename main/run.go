package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/b3nn0/redplot/archive"
	"github.com/b3nn0/redplot/chart"
	"github.com/b3nn0/redplot/common"
	"github.com/b3nn0/redplot/config"
	"github.com/b3nn0/redplot/figures"
	"github.com/b3nn0/redplot/logging"
	"github.com/b3nn0/redplot/metrics"
	"github.com/b3nn0/redplot/series"
	"github.com/b3nn0/redplot/viewer"
)

func chartSize(cfg *config.Config) (vg.Length, vg.Length) {
	return vg.Length(cfg.Output.WidthCm) * vg.Centimeter, vg.Length(cfg.Output.HeightCm) * vg.Centimeter
}

// render builds the figure, writes every configured output and returns it.
func render(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (*figures.Result, error) {
	kind, err := figures.ParseKind(cfg.Figure)
	if err != nil {
		return nil, err
	}
	dir := cfg.DataDir
	if dir == "" {
		dir = figures.DefaultDir(kind)
	}
	loader := &figures.Loader{Dir: dir, Observer: rec, Log: logging.With("figures")}
	opts := figures.Options{
		Bucketing: cfg.Bucketing.Bucketing(),
		Strict:    cfg.Strict,
		StopTime:  cfg.StopTime,
	}
	res, err := figures.Build(kind, loader, opts)
	if err != nil {
		return nil, err
	}

	outDir := common.OutputDir(cfg.Output.Path)
	if err := common.CheckFreeSpace(outDir, common.MinFreeBytes); err != nil {
		logging.Warn().Err(err).Str("dir", outDir).Msg("low disk space")
	}

	w, h := chartSize(cfg)
	if err := chart.Save(res.Figure, w, h, cfg.Output.Path); err != nil {
		return nil, fmt.Errorf("save chart: %w", err)
	}
	logging.Info().Str("path", cfg.Output.Path).Int("panels", len(res.Figure.Panels)).Msg("wrote chart")

	if cfg.Output.DumpJSON != "" {
		if err := dumpSeries(cfg.Output.DumpJSON, res.Series); err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.Output.DumpJSON).Int("series", len(res.Series)).Msg("wrote series dump")
	}

	if cfg.Archive.Path != "" {
		id, err := archiveRun(ctx, cfg.Archive.Path, res)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.Archive.Path).Int64("run", id).Msg("archived run")
	}

	rec.MarkRun(time.Now())
	if cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return nil, fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	return res, nil
}

func dumpSeries(path string, all []*series.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("series dump: %w", err)
	}
	if err := series.WriteJSON(f, all); err != nil {
		f.Close()
		return fmt.Errorf("series dump %s: %w", path, err)
	}
	return f.Close()
}

func archiveRun(ctx context.Context, path string, res *figures.Result) (int64, error) {
	a, err := archive.Open(path)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	return a.Store(ctx, string(res.Kind), res.Dir, res.Series)
}

func pngFrame(cfg *config.Config, fig chart.Figure) ([]byte, error) {
	w, h := chartSize(cfg)
	c, err := chart.Render(fig, w, h, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	res, err := render(ctx, cfg, rec)
	if err != nil {
		return err
	}

	switch cfg.View.Mode {
	case "http":
		frame, err := pngFrame(cfg, res.Figure)
		if err != nil {
			return err
		}
		im := &viewer.Image{}
		im.Set(res.Figure.Title, frame)
		return viewer.Serve(ctx, cfg.View.Addr, viewer.Handler(im, cfg.View.Refresh, rec.Handler()), logging.With("viewer"))
	case "tui":
		return viewer.RunTerminal(res.Figure)
	}
	return nil
}
