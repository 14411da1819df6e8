package delay

import (
	"errors"
	"testing"
)

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	for _, size := range []int{0, -1, 3, 12, 17} {
		if _, err := New(size); !errors.Is(err, ErrCapacity) {
			t.Fatalf("New(%d) error = %v, want ErrCapacity", size, err)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	r, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if r.Len() != 16 {
		t.Fatalf("Len: got %d want 16", r.Len())
	}

	if r.Pos() != 0 {
		t.Fatalf("Pos: got %d want 0", r.Pos())
	}

	for d := 0; d < r.Len(); d++ {
		if got := r.Read(d); got != 0 {
			t.Fatalf("fresh Read(%d) = %v, want 0", d, got)
		}
	}
}

// --- Read/Write ---

func TestReadWrite(t *testing.T) {
	r, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		r.Write(float64(i))
	}

	// delay=0 => most recently written (7)
	if got := r.Read(0); got != 7 {
		t.Fatalf("got %v want 7", got)
	}

	if got := r.Read(3); got != 4 {
		t.Fatalf("got %v want 4", got)
	}

	if got := r.Read(7); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
}

func TestReadWraparound(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		r.Write(float64(i))
	}

	// buffer holds [8, 9, 6, 7], writePos=2
	if r.Pos() != 2 {
		t.Fatalf("Pos: got %d want 2", r.Pos())
	}

	if got := r.Read(0); got != 9 {
		t.Fatalf("got %v want 9", got)
	}

	if got := r.Read(3); got != 6 {
		t.Fatalf("got %v want 6", got)
	}
}

func TestReadDelayBeyondCapacityAliases(t *testing.T) {
	r, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 40; i++ {
		r.Write(float64(i))
	}

	// 24 mod 16 = 8
	if got, want := r.Read(24), r.Read(8); got != want {
		t.Fatalf("Read(24) = %v, want alias of Read(8) = %v", got, want)
	}
}

func TestPosStaysInRange(t *testing.T) {
	r, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		r.Write(1)

		if p := r.Pos(); p < 0 || p >= r.Len() {
			t.Fatalf("Pos out of range after %d writes: %d", i+1, p)
		}

		if p, want := r.Pos(), (i+1)%16; p != want {
			t.Fatalf("Pos after %d writes = %d, want %d", i+1, p, want)
		}
	}
}

func TestReset(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	r.Write(1)
	r.Write(2)
	r.Reset()

	if r.Pos() != 0 {
		t.Fatalf("Pos after reset: got %d want 0", r.Pos())
	}

	for i := 0; i < 4; i++ {
		if got := r.Read(i); got != 0 {
			t.Fatalf("after reset Read(%d): got %v want 0", i, got)
		}
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-4, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32}, {25, 32},
	}

	for _, tt := range tests {
		if got := NextPow2(tt.in); got != tt.want {
			t.Fatalf("NextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// --- benchmarks ---

func BenchmarkWriteRead(b *testing.B) {
	r, _ := New(16)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r.Write(float64(i))
		_ = r.Read(8)
	}
}
