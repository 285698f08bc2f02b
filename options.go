package sbn

import (
	"runtime"

	"github.com/subsplit/sbn/codec"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	rng         *RNG
	parallelism int
	codec       codec.Codec
	compression codec.Compression
}

// Option customizes an Instance.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:      NoopLogger(),
		metrics:     NoopMetrics{},
		rng:         newTimeSeededRNG(),
		parallelism: runtime.GOMAXPROCS(0),
		codec:       codec.Default,
		compression: codec.DefaultCompression,
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector. The default discards all metrics.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSeed seeds the sampling generator for reproducible runs. The default
// is time-seeded.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = NewRNG(seed) }
}

// WithRNG sets the sampling generator directly. Overrides WithSeed.
func WithRNG(rng *RNG) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithParallelism bounds the number of goroutines used by training and
// batch scoring. The default is GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithSnapshotCodec sets the codec used for the snapshot manifest.
func WithSnapshotCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the compression used for snapshot payloads.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		if c != nil {
			o.compression = c
		}
	}
}
