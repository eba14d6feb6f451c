package util

import (
	"testing"
	"time"
)

func TestTimeify(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
		{86399, "23:59:59"},
	}
	for _, tt := range tests {
		if got := Timeify(tt.seconds); got != tt.want {
			t.Errorf("Timeify(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSizeify(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{KiB, "1.00 KiB"},
		{MiB, "1.00 MiB"},
		{3 * MiB / 2, "1.50 MiB"},
		{GiB, "1.00 GiB"},
		{TiB, "1.00 TiB"},
	}
	for _, tt := range tests {
		if got := Sizeify(tt.size); got != tt.want {
			t.Errorf("Sizeify(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestStatifyZeroTotal(t *testing.T) {
	progress, speed, eta := Statify(0, 0, time.Now())
	if progress != 0 || speed != 0 || eta != "00:00:00" {
		t.Errorf("Statify with zero total = (%v, %v, %q), want zeros", progress, speed, eta)
	}
}

func TestStatifyProgress(t *testing.T) {
	start := time.Now().Add(-2 * time.Second)
	progress, speed, _ := Statify(50*MiB, 100*MiB, start)
	if progress < 0.49 || progress > 0.51 {
		t.Errorf("progress = %v, want ~0.5", progress)
	}
	if speed <= 0 {
		t.Errorf("speed = %v, want > 0", speed)
	}
}

func TestStatifyClampsProgress(t *testing.T) {
	start := time.Now().Add(-time.Second)
	progress, _, _ := Statify(200, 100, start)
	if progress != 1 {
		t.Errorf("progress = %v, want clamped to 1", progress)
	}
}

func TestBufferPoolRoundTrip(t *testing.T) {
	p := NewBufferPool(128)
	b := p.Get()
	if len(b) != 128 {
		t.Fatalf("buffer length = %d, want 128", len(b))
	}
	for i := range b {
		b[i] = 0xff
	}
	p.Put(b)

	b2 := p.Get()
	for i, v := range b2 {
		if v != 0 {
			t.Fatalf("pooled buffer not zeroed at %d: %#x", i, v)
		}
	}
}

func TestBufferPoolRejectsMismatchedSize(t *testing.T) {
	p := NewBufferPool(64)
	// Should not panic or poison the pool.
	p.Put(make([]byte, 32))
	if got := len(p.Get()); got != 64 {
		t.Errorf("buffer length = %d, want 64", got)
	}
}

func TestSharedPoolBufferSizes(t *testing.T) {
	buf := ReadPool.Get()
	defer ReadPool.Put(buf)
	if len(buf) != ReadBufSize {
		t.Errorf("ReadPool buffer length = %d, want %d", len(buf), ReadBufSize)
	}

	cmp := ComparePool.Get()
	defer ComparePool.Put(cmp)
	if len(cmp) != 8*KiB {
		t.Errorf("ComparePool buffer length = %d, want %d", len(cmp), 8*KiB)
	}
}
