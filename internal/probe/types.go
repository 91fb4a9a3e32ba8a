package probe

import "time"

// Snapshot is one timestamped read of the cumulative counters for a single
// interface, summed across CPUs. Counters only ever grow, except on u64
// wraparound or when an interface is re-created and its counters restart
// from zero; consumers must treat a shrinking counter as a reset.
type Snapshot struct {
	At        time.Time
	RxBytes   uint64
	RxPackets uint64
	TxBytes   uint64
	TxPackets uint64
}
