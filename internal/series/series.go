// Package series holds the per-interface, per-metric rate history as
// fixed-capacity evicting rings. This is the only place samples live, so the
// tool's memory stays constant no matter how long it runs.
package series

import "time"

// Metric identifies one of the four rate series kept per interface.
type Metric int

const (
	RxBytes Metric = iota
	RxPackets
	TxBytes
	TxPackets

	metricCount = 4
)

func (m Metric) String() string {
	switch m {
	case RxBytes:
		return "rx_bytes"
	case RxPackets:
		return "rx_packets"
	case TxBytes:
		return "tx_bytes"
	case TxPackets:
		return "tx_packets"
	default:
		return "unknown"
	}
}

// Metrics lists all metric kinds in storage order.
func Metrics() [metricCount]Metric {
	return [metricCount]Metric{RxBytes, RxPackets, TxBytes, TxPackets}
}

// Sample is one per-interval rate value.
type Sample struct {
	At    time.Time
	Value float64
}

type key struct {
	index  int
	metric Metric
}

// ring is a fixed slice with head/count bookkeeping; appending at capacity
// overwrites the oldest slot.
type ring struct {
	samples []Sample
	head    int
	count   int
}

func (rg *ring) append(s Sample) {
	if rg.count == len(rg.samples) {
		rg.samples[rg.head] = s
		rg.head = (rg.head + 1) % len(rg.samples)
		return
	}
	rg.samples[(rg.head+rg.count)%len(rg.samples)] = s
	rg.count++
}

func (rg *ring) last() (Sample, bool) {
	if rg.count == 0 {
		return Sample{}, false
	}
	return rg.samples[(rg.head+rg.count-1)%len(rg.samples)], true
}

// Store owns every series, keyed by (interface index, metric). It is not
// synchronized; all access happens on the state-owning goroutine.
type Store struct {
	capacity int
	series   map[key]*ring
}

// NewStore creates a store whose series each hold at most capacity samples.
// Capacity is fixed for the life of the store.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		series:   make(map[key]*ring),
	}
}

func (s *Store) Capacity() int {
	return s.capacity
}

// Append adds one sample, evicting the oldest if the series is full. Sample
// times within a series never decrease; an earlier timestamp is clamped to
// the latest one already stored.
func (s *Store) Append(index int, metric Metric, sample Sample) {
	k := key{index, metric}
	rg, ok := s.series[k]
	if !ok {
		rg = &ring{samples: make([]Sample, s.capacity)}
		s.series[k] = rg
	}
	if last, ok := rg.last(); ok && sample.At.Before(last.At) {
		sample.At = last.At
	}
	rg.append(sample)
}

// Window copies the current samples of one series into dst, oldest first,
// and returns the filled slice. dst is grown as needed; the store keeps no
// reference to it, so the caller may hold the result across later appends.
func (s *Store) Window(index int, metric Metric, dst []Sample) []Sample {
	rg, ok := s.series[key{index, metric}]
	if !ok {
		return dst[:0]
	}
	if cap(dst) < rg.count {
		dst = make([]Sample, rg.count)
	} else {
		dst = dst[:rg.count]
	}
	for i := 0; i < rg.count; i++ {
		dst[i] = rg.samples[(rg.head+i)%len(rg.samples)]
	}
	return dst
}

// Range copies the samples of one series whose timestamps fall within
// [from, to] into dst, oldest first. A zero `to` means no upper limit.
func (s *Store) Range(index int, metric Metric, from, to time.Time, dst []Sample) []Sample {
	dst = s.Window(index, metric, dst)
	lo := 0
	for lo < len(dst) && dst[lo].At.Before(from) {
		lo++
	}
	hi := len(dst)
	if !to.IsZero() {
		for hi > lo && dst[hi-1].At.After(to) {
			hi--
		}
	}
	copy(dst, dst[lo:hi])
	return dst[:hi-lo]
}

// Len reports how many samples one series currently holds.
func (s *Store) Len(index int, metric Metric) int {
	if rg, ok := s.series[key{index, metric}]; ok {
		return rg.count
	}
	return 0
}

// Latest returns the most recent sample of one series.
func (s *Store) Latest(index int, metric Metric) (Sample, bool) {
	if rg, ok := s.series[key{index, metric}]; ok {
		return rg.last()
	}
	return Sample{}, false
}

// Drop discards every series belonging to one interface. Used when the
// interface vanishes from the host; a re-created interface starts empty.
func (s *Store) Drop(index int) {
	for _, m := range Metrics() {
		delete(s.series, key{index, m})
	}
}
