package telemetry

import (
	"log/slog"

	"github.com/rescuedogs/rescue-edge/internal/core/observability"
)

// LogReporter writes batches at debug level, so they only surface in
// development log configurations.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(b Batch) {
	l := r.Logger
	if l == nil {
		l = slog.Default()
	}
	urls := make([]string, 0, len(b.Errors))
	for _, e := range b.Errors {
		urls = append(urls, e.URL)
	}
	l.Debug("image error batch",
		"total_errors", b.TotalErrors,
		"batch_size", len(b.Errors),
		"urls", urls)
	observability.IncTelemetryBatch("log", nil)
}

// MultiReporter fans a batch out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(b Batch) {
	for _, r := range m {
		r.Report(b)
	}
}
