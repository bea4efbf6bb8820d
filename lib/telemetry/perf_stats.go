package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("learnwatch/telemetry")

var (
	cpuGauge, _      = meter.Float64Gauge("process.cpu_percent")
	heapGauge, _     = meter.Int64Gauge("process.heap_mb")
	checkCounter, _  = meter.Int64Counter("learnwatch.checks")
	updateCounter, _ = meter.Int64Counter("learnwatch.updates")
	checkDuration, _ = meter.Float64Histogram("learnwatch.check_seconds")
)

// RecordCheck counts one finished check. outcome is "result", "error" or
// "cancelled".
func RecordCheck(ctx context.Context, outcome string, updates int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	checkCounter.Add(ctx, 1, attrs)
	checkDuration.Record(ctx, elapsed.Seconds(), attrs)
	if updates > 0 {
		updateCounter.Add(ctx, int64(updates))
	}
}

// InstrumentPerfStats samples process cpu and heap until ctx is done. Only
// watch mode runs long enough for it to matter.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				samplePerfStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func samplePerfStats(ctx context.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	heapGauge.Record(ctx, int64(mem.HeapAlloc/1_000_000))

	usage, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		slog.DebugContext(ctx, "failed to sample cpu usage", "err", err)
		return
	}
	if len(usage) > 0 {
		cpuGauge.Record(ctx, usage[0])
	}
}
