//go:build linux

package probe

import (
	"errors"
	"fmt"
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"
)

// Probe owns the loaded eBPF objects and the per-interface tcx links.
// The kernel side only increments counters; all aggregation happens here
// at read time by summing the per-CPU map slots.
type Probe struct {
	objs  bpfObjects
	links map[int][]link.Link
}

// Load removes the memlock rlimit and loads the counting programs and the
// counter map into the kernel. No interface is attached yet.
func Load() (*Probe, error) {
	// eBPF maps are charged against RLIMIT_MEMLOCK on older kernels, and
	// the default (64KB) is too small to load anything.
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("remove memlock limit: %w", err)
	}

	p := &Probe{links: make(map[int][]link.Link)}
	if err := loadBpfObjects(&p.objs, nil); err != nil {
		return nil, fmt.Errorf("load bpf objects: %w", err)
	}

	return p, nil
}

// Attach hooks the ingress and egress counting programs onto one interface.
// A failure leaves the interface unattached but never affects links already
// established on other interfaces.
func (p *Probe) Attach(index int) error {
	if _, ok := p.links[index]; ok {
		return nil
	}

	ingress, err := link.AttachTCX(link.TCXOptions{
		Interface: index,
		Program:   p.objs.CountIngress,
		Attach:    ebpf.AttachTCXIngress,
	})
	if err != nil {
		return fmt.Errorf("attach ingress on ifindex %d: %w", index, err)
	}

	egress, err := link.AttachTCX(link.TCXOptions{
		Interface: index,
		Program:   p.objs.CountEgress,
		Attach:    ebpf.AttachTCXEgress,
	})
	if err != nil {
		ingress.Close()
		return fmt.Errorf("attach egress on ifindex %d: %w", index, err)
	}

	p.links[index] = []link.Link{ingress, egress}
	return nil
}

// Detach removes the counting hooks from one interface. The map entry is
// left in place so counters continue from their old values on re-attach.
func (p *Probe) Detach(index int) error {
	links, ok := p.links[index]
	if !ok {
		return fmt.Errorf("ifindex %d has no attached programs", index)
	}
	delete(p.links, index)

	var errs []error
	for _, l := range links {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Counters reads the cumulative counters for one interface, summing across
// CPUs. An interface that has seen no traffic yet has no map entry; that
// reads as all-zero, not as an error.
func (p *Probe) Counters(index int, _ string) (Snapshot, error) {
	snap := Snapshot{At: time.Now()}

	var perCPU []bpfTrafficCounters
	err := p.objs.IfaceCounters.Lookup(uint32(index), &perCPU)
	if errors.Is(err, ebpf.ErrKeyNotExist) {
		return snap, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("lookup counters for ifindex %d: %w", index, err)
	}

	for _, c := range perCPU {
		snap.RxBytes += c.RxBytes
		snap.RxPackets += c.RxPackets
		snap.TxBytes += c.TxBytes
		snap.TxPackets += c.TxPackets
	}
	return snap, nil
}

// Close detaches every interface and unloads the programs and map.
func (p *Probe) Close() error {
	var errs []error
	for index := range p.links {
		if err := p.Detach(index); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, p.objs.Close())
	return errors.Join(errs...)
}
