package series

import (
	"testing"
	"time"
)

func at(sec int) time.Time {
	return time.Unix(int64(sec), 0)
}

func TestAppend_WindowBound(t *testing.T) {
	t.Parallel()

	s := NewStore(5)
	for i := 0; i < 8; i++ {
		s.Append(1, RxBytes, Sample{At: at(i), Value: float64(i)})
	}

	if got := s.Len(1, RxBytes); got != 5 {
		t.Fatalf("len=%d, want 5", got)
	}
	w := s.Window(1, RxBytes, nil)
	if len(w) != 5 {
		t.Fatalf("window len=%d, want 5", len(w))
	}
	for i, sample := range w {
		if want := float64(i + 3); sample.Value != want {
			t.Fatalf("window[%d]=%v, want %v", i, sample.Value, want)
		}
	}
}

func TestAppend_BelowCapacity(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	for i := 0; i < 3; i++ {
		s.Append(1, TxPackets, Sample{At: at(i), Value: float64(i)})
	}
	if got := s.Len(1, TxPackets); got != 3 {
		t.Fatalf("len=%d, want 3", got)
	}
}

func TestWindow_SnapshotIsStable(t *testing.T) {
	t.Parallel()

	s := NewStore(3)
	s.Append(1, RxBytes, Sample{At: at(0), Value: 1})
	s.Append(1, RxBytes, Sample{At: at(1), Value: 2})

	w := s.Window(1, RxBytes, nil)
	s.Append(1, RxBytes, Sample{At: at(2), Value: 3})
	s.Append(1, RxBytes, Sample{At: at(3), Value: 4})

	if len(w) != 2 || w[0].Value != 1 || w[1].Value != 2 {
		t.Fatalf("snapshot changed after appends: %+v", w)
	}
}

func TestWindow_ReusesDst(t *testing.T) {
	t.Parallel()

	s := NewStore(4)
	for i := 0; i < 4; i++ {
		s.Append(1, RxBytes, Sample{At: at(i), Value: float64(i)})
	}

	dst := make([]Sample, 0, 8)
	w := s.Window(1, RxBytes, dst)
	if len(w) != 4 {
		t.Fatalf("window len=%d, want 4", len(w))
	}
	if cap(w) != 8 {
		t.Fatalf("dst was not reused, cap=%d", cap(w))
	}
}

func TestAppend_ClampsBackwardTimestamp(t *testing.T) {
	t.Parallel()

	s := NewStore(4)
	s.Append(1, RxBytes, Sample{At: at(10), Value: 1})
	s.Append(1, RxBytes, Sample{At: at(5), Value: 2})

	w := s.Window(1, RxBytes, nil)
	if w[1].At.Before(w[0].At) {
		t.Fatalf("timestamps went backwards: %v then %v", w[0].At, w[1].At)
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	for i := 0; i < 6; i++ {
		s.Append(1, RxBytes, Sample{At: at(i), Value: float64(i)})
	}

	got := s.Range(1, RxBytes, at(2), at(4), nil)
	if len(got) != 3 {
		t.Fatalf("range len=%d, want 3", len(got))
	}
	if got[0].Value != 2 || got[2].Value != 4 {
		t.Fatalf("range=%v..%v, want 2..4", got[0].Value, got[2].Value)
	}

	// Zero upper limit means everything from `from` on.
	got = s.Range(1, RxBytes, at(4), time.Time{}, got)
	if len(got) != 2 || got[0].Value != 4 {
		t.Fatalf("open range=%+v, want values 4,5", got)
	}
}

func TestDrop_RemovesAllMetrics(t *testing.T) {
	t.Parallel()

	s := NewStore(4)
	for _, m := range Metrics() {
		s.Append(7, m, Sample{At: at(0), Value: 1})
	}
	s.Drop(7)
	for _, m := range Metrics() {
		if got := s.Len(7, m); got != 0 {
			t.Fatalf("metric %v len=%d after drop", m, got)
		}
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()

	s := NewStore(2)
	if _, ok := s.Latest(1, RxBytes); ok {
		t.Fatal("latest on empty series should report !ok")
	}
	s.Append(1, RxBytes, Sample{At: at(0), Value: 1})
	s.Append(1, RxBytes, Sample{At: at(1), Value: 2})
	s.Append(1, RxBytes, Sample{At: at(2), Value: 3})
	got, ok := s.Latest(1, RxBytes)
	if !ok || got.Value != 3 {
		t.Fatalf("latest=%v ok=%v, want 3", got.Value, ok)
	}
}
