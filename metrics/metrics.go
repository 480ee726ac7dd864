// Package metrics counts what a redplot run read and produced.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds run metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	recordsParsed *prometheus.CounterVec
	bytesRead     *prometheus.CounterVec
	readSeconds   *prometheus.GaugeVec
	seriesPoints  *prometheus.GaugeVec
	lastRun       prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		recordsParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redplot_records_parsed_total",
				Help: "Records parsed per plot file.",
			},
			[]string{"file"},
		),
		bytesRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redplot_bytes_read_total",
				Help: "Bytes read per plot file.",
			},
			[]string{"file"},
		),
		readSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "redplot_file_read_seconds",
				Help: "Time spent reading and tokenizing the last copy of each plot file.",
			},
			[]string{"file"},
		),
		seriesPoints: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "redplot_series_points",
				Help: "Points in each assembled series.",
			},
			[]string{"series"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redplot_last_run_timestamp_seconds",
			Help: "Unix time of the last completed build.",
		}),
	}
	r.registry.MustRegister(r.recordsParsed, r.bytesRead, r.readSeconds, r.seriesPoints, r.lastRun)
	return r
}

// ObserveFile records one plot file read.
func (r *Recorder) ObserveFile(name string, records int, size int64, d time.Duration) {
	r.recordsParsed.WithLabelValues(name).Add(float64(records))
	r.bytesRead.WithLabelValues(name).Add(float64(size))
	r.readSeconds.WithLabelValues(name).Set(d.Seconds())
}

// ObserveSeries records the length of an assembled series.
func (r *Recorder) ObserveSeries(name string, points int) {
	r.seriesPoints.WithLabelValues(name).Set(float64(points))
}

// MarkRun stamps the completion time of a build.
func (r *Recorder) MarkRun(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
