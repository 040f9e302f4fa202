package prometheus

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	perksAdmin "github.com/MrEthical07/perksAdmin"
	"github.com/MrEthical07/perksAdmin/metrics/export/internaldefs"
)

var _ io.WriterTo = (*PrometheusExporter)(nil)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

// MetricsSource is what the exporter reads; [perksAdmin.Console] satisfies it.
type MetricsSource interface {
	MetricsSnapshot() perksAdmin.MetricsSnapshot
	NotificationsDropped() uint64
}

// PrometheusExporter renders console metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source MetricsSource
}

// NewPrometheusExporter creates an exporter reading from console.
func NewPrometheusExporter(console *perksAdmin.Console) *PrometheusExporter {
	return &PrometheusExporter{source: console}
}

// NewPrometheusExporterFromSource creates an exporter from a custom [MetricsSource].
func NewPrometheusExporterFromSource(source MetricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves the current exposition on every request.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = p.WriteTo(w)
	})
}

// Render returns the current metrics, or "" when metrics are disabled and
// nothing was dropped.
func (p *PrometheusExporter) Render() string {
	var buf bytes.Buffer
	_, _ = p.WriteTo(&buf)
	return buf.String()
}

// WriteTo writes the exposition to w. Families appear in the order of
// [internaldefs.CounterDefs] and [internaldefs.HistogramDefs]. Writing stops
// at the first error.
func (p *PrometheusExporter) WriteTo(w io.Writer) (int64, error) {
	if p == nil || p.source == nil {
		return 0, nil
	}

	snap := p.source.MetricsSnapshot()
	dropped := p.source.NotificationsDropped()
	if len(snap.Counters) == 0 && len(snap.Histograms) == 0 && dropped == 0 {
		return 0, nil
	}

	ew := &errWriter{w: w}
	for _, def := range internaldefs.CounterDefs {
		ew.family(def.Name, def.Help, "counter")
		ew.printf("%s %d\n", def.Name, snap.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[def.ID]))
		ew.family(def.Name, def.Help, "histogram")
		for i, le := range internaldefs.HistogramBounds {
			ew.printf("%s_bucket{le=%q} %d\n", def.Name, le, buckets[i])
		}
		ew.printf("%s_count %d\n", def.Name, buckets[len(buckets)-1])
		// Snapshots carry bucket counts only.
		ew.printf("%s_sum 0\n", def.Name)
	}

	ew.family(internaldefs.NotificationsDroppedName, internaldefs.NotificationsDroppedHelp, "counter")
	ew.printf("%s %d\n", internaldefs.NotificationsDroppedName, dropped)
	return ew.n, ew.err
}

// errWriter counts bytes and keeps the first write error, skipping everything
// after it.
type errWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	n, err := fmt.Fprintf(e.w, format, args...)
	e.n += int64(n)
	e.err = err
}

func (e *errWriter) family(name, help, kind string) {
	e.printf("# HELP %s %s\n# TYPE %s %s\n", name, escapeHelp(help), name, kind)
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escapeHelp(help string) string {
	return helpEscaper.Replace(help)
}
