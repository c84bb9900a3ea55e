package colorbag

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordCollect is called after each corpus collection run.
	// images is the number of input images, err is nil if successful.
	RecordCollect(images int, duration time.Duration, err error)

	// RecordTrain is called after each vocabulary training run.
	RecordTrain(k, iterations int, duration time.Duration, err error)

	// RecordBuild is called after each bag building run.
	RecordBuild(images int, duration time.Duration, err error)

	// RecordExport is called after each dataset export.
	RecordExport(rows int, duration time.Duration, err error)

	// RecordPublish is called after each publish to a blob store.
	RecordPublish(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCollect(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordTrain(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordExport(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordPublish(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CollectCount      atomic.Int64
	CollectErrors     atomic.Int64
	CollectImages     atomic.Int64
	CollectTotalNanos atomic.Int64
	TrainCount        atomic.Int64
	TrainErrors       atomic.Int64
	TrainTotalNanos   atomic.Int64
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	BuildImages       atomic.Int64
	BuildTotalNanos   atomic.Int64
	ExportCount       atomic.Int64
	ExportErrors      atomic.Int64
	ExportRows        atomic.Int64
	PublishCount      atomic.Int64
	PublishErrors     atomic.Int64
}

// RecordCollect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCollect(images int, duration time.Duration, err error) {
	b.CollectCount.Add(1)
	b.CollectImages.Add(int64(images))
	b.CollectTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CollectErrors.Add(1)
	}
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(k, iterations int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
	}
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(images int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildImages.Add(int64(images))
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(rows int, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportRows.Add(int64(rows))
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// RecordPublish implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPublish(duration time.Duration, err error) {
	b.PublishCount.Add(1)
	if err != nil {
		b.PublishErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CollectCount:  b.CollectCount.Load(),
		CollectErrors: b.CollectErrors.Load(),
		CollectImages: b.CollectImages.Load(),
		TrainCount:    b.TrainCount.Load(),
		TrainErrors:   b.TrainErrors.Load(),
		BuildCount:    b.BuildCount.Load(),
		BuildErrors:   b.BuildErrors.Load(),
		BuildImages:   b.BuildImages.Load(),
		ExportCount:   b.ExportCount.Load(),
		ExportErrors:  b.ExportErrors.Load(),
		ExportRows:    b.ExportRows.Load(),
		PublishCount:  b.PublishCount.Load(),
		PublishErrors: b.PublishErrors.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CollectCount  int64
	CollectErrors int64
	CollectImages int64
	TrainCount    int64
	TrainErrors   int64
	BuildCount    int64
	BuildErrors   int64
	BuildImages   int64
	ExportCount   int64
	ExportErrors  int64
	ExportRows    int64
	PublishCount  int64
	PublishErrors int64
}
