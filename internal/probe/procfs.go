package probe

import (
	"fmt"
	"sync"
	"time"

	gnet "github.com/shirou/gopsutil/v3/net"
)

// ProcSource reads the same four cumulative counters from the kernel's
// /proc/net/dev accounting instead of the eBPF map. It needs no privileges,
// at the cost of counting at the device layer rather than the TC hook.
//
// /proc/net/dev is one file for all interfaces, so a single read is cached
// briefly and shared by the per-interface lookups of one collection tick.
type ProcSource struct {
	mu       sync.Mutex
	cacheAt  time.Time
	cacheFor time.Duration
	byName   map[string]gnet.IOCountersStat
}

// NewProcSource returns a ProcSource whose underlying /proc read is reused
// for cacheFor between lookups.
func NewProcSource(cacheFor time.Duration) *ProcSource {
	return &ProcSource{cacheFor: cacheFor}
}

// Counters returns the cumulative counters for one interface by name.
func (s *ProcSource) Counters(_ int, name string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.byName == nil || now.Sub(s.cacheAt) > s.cacheFor {
		counters, err := gnet.IOCounters(true)
		if err != nil {
			return Snapshot{}, fmt.Errorf("read interface counters: %w", err)
		}
		s.byName = make(map[string]gnet.IOCountersStat, len(counters))
		for _, c := range counters {
			s.byName[c.Name] = c
		}
		s.cacheAt = now
	}

	c, ok := s.byName[name]
	if !ok {
		return Snapshot{}, fmt.Errorf("interface %q not present in counter table", name)
	}

	// Timestamp with the read time, not the lookup time, so rates derived
	// from cached lookups line up with when the kernel was actually asked.
	return Snapshot{
		At:        s.cacheAt,
		RxBytes:   c.BytesRecv,
		RxPackets: c.PacketsRecv,
		TxBytes:   c.BytesSent,
		TxPackets: c.PacketsSent,
	}, nil
}
