// Package collector turns cumulative counter snapshots into per-interval
// rate samples, one per metric per enabled interface per tick.
package collector

import (
	"ifplot/internal/iface"
	"ifplot/internal/probe"
	"ifplot/internal/series"
)

// Source is the shared counter table the collector polls. The eBPF probe and
// the /proc fallback both implement it.
type Source interface {
	Counters(index int, name string) (probe.Snapshot, error)
}

// TickResult reports what one collection tick did, so the caller can clear
// or set stale markers per interface. A read that succeeds but only records
// a baseline lands in Primed, not Sampled; both count as good reads.
type TickResult struct {
	Sampled []int
	Primed  []int
	Failed  []int
}

// Collector derives rates from consecutive snapshots. A snapshot is only a
// baseline until the next one arrives, so the first read after an interface
// is enabled (or re-enabled) emits nothing: the elapsed wall time before
// that read was not a measured traffic interval.
type Collector struct {
	src       Source
	store     *series.Store
	baselines map[int]probe.Snapshot
}

func New(src Source, store *series.Store) *Collector {
	return &Collector{
		src:       src,
		store:     store,
		baselines: make(map[int]probe.Snapshot),
	}
}

// Tick polls the source once for every enabled interface and appends the
// derived samples. A failed read skips that interface for this tick only;
// its baseline is kept so the next successful read still yields a full
// interval.
func (c *Collector) Tick(enabled []iface.Interface) TickResult {
	var res TickResult
	for _, it := range enabled {
		snap, err := c.src.Counters(it.Index, it.Name)
		if err != nil {
			res.Failed = append(res.Failed, it.Index)
			continue
		}

		prev, primed := c.baselines[it.Index]
		c.baselines[it.Index] = snap
		if !primed {
			res.Primed = append(res.Primed, it.Index)
			continue
		}

		elapsed := snap.At.Sub(prev.At).Seconds()
		if elapsed <= 0 {
			res.Primed = append(res.Primed, it.Index)
			continue
		}

		c.store.Append(it.Index, series.RxBytes, series.Sample{At: snap.At, Value: rate(snap.RxBytes, prev.RxBytes, elapsed)})
		c.store.Append(it.Index, series.RxPackets, series.Sample{At: snap.At, Value: rate(snap.RxPackets, prev.RxPackets, elapsed)})
		c.store.Append(it.Index, series.TxBytes, series.Sample{At: snap.At, Value: rate(snap.TxBytes, prev.TxBytes, elapsed)})
		c.store.Append(it.Index, series.TxPackets, series.Sample{At: snap.At, Value: rate(snap.TxPackets, prev.TxPackets, elapsed)})
		res.Sampled = append(res.Sampled, it.Index)
	}
	return res
}

// Latest returns the most recent counter snapshot read for one interface.
// The snapshot carries cumulative totals since the counting point started,
// which is what the histogram panels plot.
func (c *Collector) Latest(index int) (probe.Snapshot, bool) {
	snap, ok := c.baselines[index]
	return snap, ok
}

// Forget drops the baseline for a disabled interface. History stays in the
// store; the next tick after re-enable records a fresh baseline and emits
// nothing.
func (c *Collector) Forget(index int) {
	delete(c.baselines, index)
}

// Remove drops both the baseline and the stored history of a vanished
// interface.
func (c *Collector) Remove(index int) {
	delete(c.baselines, index)
	c.store.Drop(index)
}

// rate converts a counter delta into a per-second value. A counter that
// shrank (u64 wrap, or reset after interface re-creation) reads as zero, so
// rates are never negative.
func rate(cur, prev uint64, elapsed float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / elapsed
}
