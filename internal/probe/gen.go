package probe

// The generated bindings (bpf_bpfel.go and the embedded object) are produced
// by `go generate ./...` and are not committed. TCX attachment needs the
// program's SEC("tc") sections compiled against the local vmlinux.h.

//go:generate go tool bpf2go -target bpfel -cflags "-D__TARGET_ARCH_x86" -type traffic_counters bpf ../../bpf/ifcount.c -- -I../../bpf/headers
