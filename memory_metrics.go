package vector

import (
	"reflect"
	"unsafe"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusFailure = "failure"
	statusSuccess = "success"
)

type memoryMetrics struct {
	acquisitionsTotal  *prometheus.CounterVec
	releasesTotal      prometheus.Counter
	acquiredBytesTotal prometheus.Counter
	inUseBytes         prometheus.Gauge
}

func newMemoryMetrics(r prometheus.Registerer) *memoryMetrics {
	return &memoryMetrics{
		acquisitionsTotal: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Namespace: "vector",
			Subsystem: "memory",
			Name:      "acquisitions_total",
			Help:      "Total number of storage acquisitions by status.",
		}, []string{"status"}),
		releasesTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Namespace: "vector",
			Subsystem: "memory",
			Name:      "releases_total",
			Help:      "Total number of storage regions released.",
		}),
		acquiredBytesTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Namespace: "vector",
			Subsystem: "memory",
			Name:      "acquired_bytes_total",
			Help:      "Total number of bytes acquired.",
		}),
		inUseBytes: promauto.With(r).NewGauge(prometheus.GaugeOpts{
			Namespace: "vector",
			Subsystem: "memory",
			Name:      "in_use_bytes",
			Help:      "Number of bytes currently acquired and not yet released.",
		}),
	}
}

// InstrumentedMemory reports every acquisition and release of a parent
// Memory to Prometheus and logs failed acquisitions.
type InstrumentedMemory struct {
	parent  Memory
	logger  log.Logger
	metrics *memoryMetrics
}

// NewInstrumentedMemory wraps parent. A nil parent means DefaultMemory,
// a nil registerer skips registration and a nil logger discards logs.
func NewInstrumentedMemory(parent Memory, reg prometheus.Registerer, logger log.Logger) *InstrumentedMemory {
	if parent == nil {
		parent = DefaultMemory
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &InstrumentedMemory{
		parent:  parent,
		logger:  logger,
		metrics: newMemoryMetrics(reg),
	}
}

// Alloc implements Memory.
func (m *InstrumentedMemory) Alloc(typ reflect.Type, n int) (unsafe.Pointer, error) {
	ptr, err := m.parent.Alloc(typ, n)
	if err != nil {
		m.metrics.acquisitionsTotal.WithLabelValues(statusFailure).Inc()
		level.Warn(m.logger).Log("msg", "storage acquisition failed", "type", typ, "count", n, "err", err)
		return nil, err
	}

	sz := float64(byteSize(typ, n))
	m.metrics.acquisitionsTotal.WithLabelValues(statusSuccess).Inc()
	m.metrics.acquiredBytesTotal.Add(sz)
	m.metrics.inUseBytes.Add(sz)
	level.Debug(m.logger).Log("msg", "storage acquired", "type", typ, "count", n, "bytes", sz)
	return ptr, nil
}

// Free implements Memory.
func (m *InstrumentedMemory) Free(ptr unsafe.Pointer, typ reflect.Type, n int) {
	if ptr == nil {
		return
	}

	m.parent.Free(ptr, typ, n)

	sz := float64(byteSize(typ, n))
	m.metrics.releasesTotal.Inc()
	m.metrics.inUseBytes.Sub(sz)
	level.Debug(m.logger).Log("msg", "storage released", "type", typ, "count", n, "bytes", sz)
}
