package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/limpo1989/vector"
)

type record struct {
	id   int
	tags []string
}

func (r *record) Clone() (record, error) {
	return record{id: r.id, tags: append([]string(nil), r.tags...)}, nil
}

func (r *record) Destroy() {
	r.tags = nil
}

func main() {
	var (
		limit = flag.Uint("limit", 4096, "byte budget for vector storage")
		count = flag.Int("count", 100, "number of records to append")
		debug = flag.Bool("debug", false, "log every acquisition and release")
	)
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *debug {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	reg := prometheus.NewRegistry()
	mem := vector.NewInstrumentedMemory(vector.NewLimitedMemory(nil, uintptr(*limit)), reg, logger)

	vec := vector.New[record](vector.WithMemory(mem))
	defer vec.Release()

	for i := 0; i < *count; i++ {
		err := vec.PushBack(record{id: i, tags: []string{"demo"}})
		if errors.Is(err, vector.ErrOutOfMemory) {
			level.Info(logger).Log("msg", "storage budget reached", "len", vec.Len(), "cap", vec.Cap())
			break
		}
		if err != nil {
			level.Error(logger).Log("msg", "append failed", "err", err)
			os.Exit(1)
		}
	}

	editMiddle(vec, logger)

	fmt.Println("len:", vec.Len(), "cap:", vec.Cap())
	for i, r := range vec.All() {
		if i >= 4 {
			break
		}
		fmt.Println("record:", i, r.id, r.tags)
	}

	families, err := reg.Gather()
	if err != nil {
		level.Error(logger).Log("msg", "gather metrics", "err", err)
		os.Exit(1)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			}
			fmt.Println("metric:", mf.GetName(), m.GetLabel(), value)
		}
	}
}

// editMiddle inserts a marker record at position 1 and erases position 2,
// skipping whatever the current length does not allow.
func editMiddle(vec *vector.Vector[record], logger log.Logger) {
	if vec.Len() >= 1 {
		if _, err := vec.Insert(1, record{id: -1}); err != nil {
			level.Warn(logger).Log("msg", "insert failed", "err", err)
		}
	}
	if vec.Len() > 2 {
		if _, err := vec.Erase(2); err != nil {
			level.Warn(logger).Log("msg", "erase failed", "err", err)
		}
	}
}
