// Package iface tracks the host's network interfaces and their per-interface
// monitoring state. The registry is the single source of truth consulted by
// both the collector (gates sampling) and the UI (gates panel allocation).
package iface

import (
	"fmt"
	"sort"

	gnet "github.com/shirou/gopsutil/v3/net"
)

// Interface is one known network interface. Index is the kernel ifindex and
// is the stable identity; Name is display-only and may change across a
// refresh without the interface changing identity.
type Interface struct {
	Index   int
	Name    string
	Enabled bool
	// Uninstrumentable means probe attachment failed; the interface stays
	// listed but is excluded from collection and cannot be toggled on.
	Uninstrumentable bool
	// Stale means the last counter read failed; cleared by the next good read.
	Stale bool
}

// Pair is one (name, index) entry from the operating system's interface list.
type Pair struct {
	Index int
	Name  string
}

// Enumerate returns the host's current interfaces as (name, index) pairs.
func Enumerate() ([]Pair, error) {
	list, err := gnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}
	pairs := make([]Pair, 0, len(list))
	for _, s := range list {
		pairs = append(pairs, Pair{Index: s.Index, Name: s.Name})
	}
	return pairs, nil
}

// Registry holds the known interfaces ordered by ascending index. It is not
// synchronized; all access happens on the state-owning goroutine.
type Registry struct {
	ifaces []Interface
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Refresh reconciles the registry against a fresh OS interface list. New
// interfaces are added enabled (attachment is the caller's business); ones
// absent from the list are removed. Returns what was added and removed so
// the caller can attach probes and drop series.
func (r *Registry) Refresh(pairs []Pair) (added, removed []Interface) {
	present := make(map[int]string, len(pairs))
	for _, p := range pairs {
		present[p.Index] = p.Name
	}

	kept := r.ifaces[:0]
	for _, it := range r.ifaces {
		name, ok := present[it.Index]
		if !ok {
			removed = append(removed, it)
			continue
		}
		it.Name = name
		kept = append(kept, it)
		delete(present, it.Index)
	}
	r.ifaces = kept

	for index, name := range present {
		it := Interface{Index: index, Name: name, Enabled: true}
		r.ifaces = append(r.ifaces, it)
		added = append(added, it)
	}

	sort.Slice(r.ifaces, func(i, j int) bool { return r.ifaces[i].Index < r.ifaces[j].Index })
	sort.Slice(added, func(i, j int) bool { return added[i].Index < added[j].Index })
	return added, removed
}

// Toggle flips the enabled state of one interface and reports the new state.
// Toggling an unknown or uninstrumentable interface is a no-op.
func (r *Registry) Toggle(index int) (Interface, bool) {
	it := r.find(index)
	if it == nil || it.Uninstrumentable {
		return Interface{}, false
	}
	it.Enabled = !it.Enabled
	return *it, true
}

// MarkUninstrumentable records a failed probe attachment. The interface is
// forced off and stays visible so the operator can see it was skipped.
func (r *Registry) MarkUninstrumentable(index int) {
	if it := r.find(index); it != nil {
		it.Uninstrumentable = true
		it.Enabled = false
	}
}

// SetStale marks or clears a transient read failure.
func (r *Registry) SetStale(index int, stale bool) {
	if it := r.find(index); it != nil {
		it.Stale = stale
	}
}

// Get returns a copy of one interface.
func (r *Registry) Get(index int) (Interface, bool) {
	if it := r.find(index); it != nil {
		return *it, true
	}
	return Interface{}, false
}

// List returns a copy of all interfaces ordered by index.
func (r *Registry) List() []Interface {
	out := make([]Interface, len(r.ifaces))
	copy(out, r.ifaces)
	return out
}

// Enabled returns copies of the interfaces currently enabled for collection.
func (r *Registry) Enabled() []Interface {
	var out []Interface
	for _, it := range r.ifaces {
		if it.Enabled {
			out = append(out, it)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.ifaces)
}

// At returns the interface at a list position, for selection cursors.
func (r *Registry) At(pos int) (Interface, bool) {
	if pos < 0 || pos >= len(r.ifaces) {
		return Interface{}, false
	}
	return r.ifaces[pos], true
}

func (r *Registry) find(index int) *Interface {
	for i := range r.ifaces {
		if r.ifaces[i].Index == index {
			return &r.ifaces[i]
		}
	}
	return nil
}
