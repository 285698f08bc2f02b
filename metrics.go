package sbn

import (
	"sync"
	"time"
)

// MetricsCollector receives operational metrics from an Instance. All
// methods must be safe for concurrent use.
type MetricsCollector interface {
	// ObserveTraining records a completed training run.
	ObserveTraining(method string, iterations int, duration time.Duration)
	// ObserveSample records a sampled topology.
	ObserveSample(rooted bool, duration time.Duration)
	// ObserveScoring records a probability calculation over a batch.
	ObserveScoring(topologies int, duration time.Duration)
}

// NoopMetrics discards all metrics.
type NoopMetrics struct{}

var _ MetricsCollector = (*NoopMetrics)(nil)

func (NoopMetrics) ObserveTraining(string, int, time.Duration) {}
func (NoopMetrics) ObserveSample(bool, time.Duration)          {}
func (NoopMetrics) ObserveScoring(int, time.Duration)          {}

// BasicMetrics accumulates simple counters and cumulative durations.
type BasicMetrics struct {
	mu sync.Mutex

	TrainingRuns       int64
	TrainingIterations int64
	TrainingTime       time.Duration

	Samples    int64
	SampleTime time.Duration

	ScoredTopologies int64
	ScoringTime      time.Duration
}

var _ MetricsCollector = (*BasicMetrics)(nil)

func (m *BasicMetrics) ObserveTraining(_ string, iterations int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrainingRuns++
	m.TrainingIterations += int64(iterations)
	m.TrainingTime += d
}

func (m *BasicMetrics) ObserveSample(_ bool, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Samples++
	m.SampleTime += d
}

func (m *BasicMetrics) ObserveScoring(topologies int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScoredTopologies += int64(topologies)
	m.ScoringTime += d
}

// Snapshot returns a copy of the current counters.
func (m *BasicMetrics) Snapshot() BasicMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return BasicMetrics{
		TrainingRuns:       m.TrainingRuns,
		TrainingIterations: m.TrainingIterations,
		TrainingTime:       m.TrainingTime,
		Samples:            m.Samples,
		SampleTime:         m.SampleTime,
		ScoredTopologies:   m.ScoredTopologies,
		ScoringTime:        m.ScoringTime,
	}
}
