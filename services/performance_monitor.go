package services

import (
	"strconv"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// window of recent generation durations kept for the p95 aggregate
const monitorWindowSize = 512

type PerformanceReport struct {
	TargetSeconds  float64 `json:"target_seconds"`
	Count          int64   `json:"count"`
	SlowCount      int64   `json:"slow_count"`
	AverageSeconds float64 `json:"average_seconds"`
	P95Seconds     float64 `json:"p95_seconds"`
}

// PerformanceMonitor tracks generation wall-clock time across the process
// lifetime. The aggregate is append-only until an explicit Reset.
type PerformanceMonitor struct {
	mu        sync.Mutex
	threshold time.Duration
	window    []float64
	count     int64
	slowCount int64
	total     float64
}

// NewPerformanceMonitor reads the slow threshold from
// SLOW_GENERATION_THRESHOLD_MS (default 10s).
func NewPerformanceMonitor() *PerformanceMonitor {
	thresholdMs, err := strconv.Atoi(GetEnv("SLOW_GENERATION_THRESHOLD_MS", "10000"))
	if err != nil || thresholdMs <= 0 {
		thresholdMs = 10000
	}
	return &PerformanceMonitor{threshold: time.Duration(thresholdMs) * time.Millisecond}
}

// Observe records one generation and reports whether it was slow.
func (m *PerformanceMonitor) Observe(d time.Duration) bool {
	isSlow := d > m.threshold

	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	if isSlow {
		m.slowCount++
	}
	m.total += d.Seconds()
	m.window = append(m.window, d.Seconds())
	if len(m.window) > monitorWindowSize {
		m.window = m.window[1:]
	}
	return isSlow
}

func (m *PerformanceMonitor) Threshold() time.Duration {
	return m.threshold
}

// Snapshot is the read-only aggregate for the performance-targets endpoint.
func (m *PerformanceMonitor) Snapshot() PerformanceReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := PerformanceReport{
		TargetSeconds: m.threshold.Seconds(),
		Count:         m.count,
		SlowCount:     m.slowCount,
	}
	if m.count > 0 {
		report.AverageSeconds = m.total / float64(m.count)
	}
	if len(m.window) > 0 {
		if p95, err := stats.Percentile(stats.Float64Data(m.window), 95); err == nil {
			report.P95Seconds = p95
		}
	}
	return report
}

func (m *PerformanceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.window = nil
	m.count = 0
	m.slowCount = 0
	m.total = 0
}
