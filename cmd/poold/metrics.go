// metrics.go - Metrics collection for the pool daemon.
package main

import (
	"sync"
	"time"
)

// Metric names recorded by the daemon.
const (
	MetricCircuitCompileTime  = "circuit_compile_time"
	MetricKeySetupTime        = "key_setup_time"
	MetricBuildTime           = "transfer_build_time"
	MetricProofGenerationTime = "proof_generation_time"
	MetricProofVerifyTime     = "proof_verify_time"
	MetricLedgerEpoch         = "ledger_epoch"
	MetricErrorCount          = "error_count"
)

// MetricsCollector accumulates counters, gauges and duration samples.
type MetricsCollector struct {
	mu        sync.Mutex
	counters  map[string]int64
	gauges    map[string]float64
	durations map[string][]time.Duration
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:  make(map[string]int64),
		gauges:    make(map[string]float64),
		durations: make(map[string][]time.Duration),
	}
}

// IncrementCounter adds one to a counter.
func (mc *MetricsCollector) IncrementCounter(name string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.counters[name]++
}

// SetGauge sets a gauge value.
func (mc *MetricsCollector) SetGauge(name string, value float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.gauges[name] = value
}

// RecordDuration records a duration sample.
func (mc *MetricsCollector) RecordDuration(name string, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.durations[name] = append(mc.durations[name], d)
}

// Time runs fn and records its elapsed time under name.
func (mc *MetricsCollector) Time(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	mc.RecordDuration(name, time.Since(start))
	if err != nil {
		mc.IncrementCounter(MetricErrorCount)
	}
	return err
}

// Summary returns a flattened view of everything collected.
func (mc *MetricsCollector) Summary() map[string]interface{} {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	summary := make(map[string]interface{})
	for name, v := range mc.counters {
		summary[name] = v
	}
	for name, v := range mc.gauges {
		summary[name] = v
	}
	for name, samples := range mc.durations {
		var sum time.Duration
		for _, d := range samples {
			sum += d
		}
		summary[name] = map[string]interface{}{
			"count": len(samples),
			"total": sum.String(),
			"avg":   (sum / time.Duration(len(samples))).String(),
		}
	}
	return summary
}
