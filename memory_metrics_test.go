package vector

import (
	"bytes"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedMemory(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)

	mem := NewInstrumentedMemory(nil, prometheus.NewRegistry(), logger)
	vec := New[int64](WithMemory(mem))
	for i := 0; i < 3; i++ {
		require.NoError(t, vec.PushBack(int64(i)))
	}

	m := mem.metrics
	assert.Equal(t, float64(3), testutil.ToFloat64(m.acquisitionsTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.acquisitionsTotal.WithLabelValues(statusFailure)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.releasesTotal))
	assert.Equal(t, float64(56), testutil.ToFloat64(m.acquiredBytesTotal))
	assert.Equal(t, float64(32), testutil.ToFloat64(m.inUseBytes))

	vec.Release()
	assert.Equal(t, float64(3), testutil.ToFloat64(m.releasesTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inUseBytes))

	assert.Contains(t, buf.String(), `level=debug msg="storage acquired" type=int64 count=4 bytes=32`)
	assert.Contains(t, buf.String(), `level=debug msg="storage released"`)
}

func TestInstrumentedMemory_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowWarn())

	mem := NewInstrumentedMemory(NewLimitedMemory(nil, 0), prometheus.NewRegistry(), logger)
	vec := New[string](WithMemory(mem))

	err := vec.PushBack("x")
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.True(t, vec.Empty())

	m := mem.metrics
	assert.Equal(t, float64(1), testutil.ToFloat64(m.acquisitionsTotal.WithLabelValues(statusFailure)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.acquiredBytesTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inUseBytes))

	out := buf.String()
	assert.Contains(t, out, `level=warn msg="storage acquisition failed" type=string count=1`)
	assert.Contains(t, out, "out of memory")
	assert.NotContains(t, out, "level=debug")
}

func TestInstrumentedMemory_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewInstrumentedMemory(nil, reg, nil)

	// the acquisitions vector has no series until the first acquisition
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Panics(t, func() { NewInstrumentedMemory(nil, reg, nil) })
	assert.NotPanics(t, func() { NewInstrumentedMemory(nil, nil, nil) })
}
