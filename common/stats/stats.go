// Package stats provides a minimal metrics interface backed by
// go-metrics, modeled on a scoped receiver that can be passed down a
// call tree. Wrapping go-metrics keeps the dependency from leaking to
// anyone importing reshard as a library.
package stats

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Stats users can either reference this global receiver or construct their own.
var CurrentStatsReceiver StatsReceiver = NilStatsReceiver()

// StatsReceiver provides scoped access to counters, gauges and latency
// instruments. Receivers sharing a registry share instruments by name.
type StatsReceiver interface {
	// Scope returns a receiver that namespaces instrument names with the
	// given path elements:
	//
	//   statsReceiver.Scope("foo", "bar").Counter("baz") // equals
	//   statsReceiver.Counter("foo", "bar", "baz")
	//
	Scope(scope ...string) StatsReceiver

	// Counter provides an event counter.
	Counter(name ...string) Counter

	// Gauge holds an int64 value that can be set arbitrarily.
	Gauge(name ...string) Gauge

	// Latency provides a callsite latency instrument:
	//
	//   defer stat.Latency("foo_ms").Time().Stop()
	//
	Latency(name ...string) Latency

	// Render marshals the registry to JSON.
	Render(pretty bool) []byte
}

type Counter interface {
	Inc(i int64)
	Count() int64
}

type Gauge interface {
	Update(v int64)
	Value() int64
}

// Latency is a histogram of recorded durations in nanoseconds.
type Latency interface {
	Time() *Stopwatch
	Snapshot() metrics.Histogram
}

// Stopwatch records the elapsed time since Time() into its histogram.
type Stopwatch struct {
	start time.Time
	h     metrics.Histogram
}

func (s *Stopwatch) Stop() {
	s.h.Update(int64(time.Since(s.start)))
}

// DefaultStatsReceiver returns a receiver over a fresh go-metrics registry.
func DefaultStatsReceiver() StatsReceiver {
	return &defaultStatsReceiver{registry: metrics.NewRegistry()}
}

// NilStatsReceiver returns a receiver whose instruments record nothing.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return nilStatsReceiver{}
}

type defaultStatsReceiver struct {
	mu       sync.Mutex
	registry metrics.Registry
	scope    []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{registry: s.registry, scope: append(append([]string{}, s.scope...), scope...)}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scoped(name), metrics.NewCounter).(metrics.Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scoped(name), metrics.NewGauge).(metrics.Gauge)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	h := s.registry.GetOrRegister(s.scoped(name), func() metrics.Histogram {
		return metrics.NewHistogram(metrics.NewUniformSample(1024))
	}).(metrics.Histogram)
	return &latencyHistogram{h}
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]interface{}{}
	s.registry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Counter:
			out[name] = m.Count()
		case metrics.Gauge:
			out[name] = m.Value()
		case metrics.Histogram:
			out[name+".avg"] = m.Mean()
			out[name+".count"] = m.Count()
		}
	})
	var b []byte
	if pretty {
		b, _ = json.MarshalIndent(out, "", "  ")
	} else {
		b, _ = json.Marshal(out)
	}
	return b
}

// Hierarchical names use a '/' path separator, so path elements have any
// '/' replaced rather than failing: instrument names can be dynamically
// generated (i.e. from error strings).
func (s *defaultStatsReceiver) scoped(name []string) string {
	elems := append(append([]string{}, s.scope...), name...)
	for i, e := range elems {
		elems[i] = strings.Replace(e, "/", "_SLASH_", -1)
	}
	return strings.Join(elems, "/")
}

type latencyHistogram struct {
	h metrics.Histogram
}

func (l *latencyHistogram) Time() *Stopwatch {
	return &Stopwatch{start: time.Now(), h: l.h}
}

func (l *latencyHistogram) Snapshot() metrics.Histogram { return l.h.Snapshot() }

type nilStatsReceiver struct{}

func (s nilStatsReceiver) Scope(scope ...string) StatsReceiver { return s }
func (s nilStatsReceiver) Counter(name ...string) Counter      { return metrics.NilCounter{} }
func (s nilStatsReceiver) Gauge(name ...string) Gauge          { return metrics.NilGauge{} }
func (s nilStatsReceiver) Latency(name ...string) Latency {
	return &latencyHistogram{metrics.NilHistogram{}}
}
func (s nilStatsReceiver) Render(pretty bool) []byte { return []byte("{}") }
