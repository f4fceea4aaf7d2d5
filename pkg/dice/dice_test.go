package dice

import (
	"sync"
	"testing"
)

func TestRoll_Bounds(t *testing.T) {
	src, _, err := NewSource(42)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	for i := 0; i < 1000; i++ {
		r := Roll(src, 100)
		if r < 1 || r > 100 {
			t.Fatalf("Roll() = %d, want 1..100", r)
		}
	}
}

func TestBetween_Bounds(t *testing.T) {
	src, _, _ := NewSource(7)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := Between(src, 1, 5)
		if v < 1 || v > 5 {
			t.Fatalf("Between() = %d, want 1..5", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected all 5 values to appear, got %v", seen)
	}
}

func TestNewSource_ZeroSeedPicksOne(t *testing.T) {
	_, seed, err := NewSource(0)
	if err != nil {
		t.Fatalf("NewSource(0) error = %v", err)
	}
	if seed == 0 {
		t.Error("expected a non-zero generated seed")
	}
}

func TestNewSource_Reproducible(t *testing.T) {
	a, _, _ := NewSource(99)
	b, _, _ := NewSource(99)
	for i := 0; i < 20; i++ {
		if x, y := a.Intn(100), b.Intn(100); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestSequence(t *testing.T) {
	s := NewSequence(27, 1, 100)

	tests := []struct {
		n    int
		want int
	}{
		{100, 26},
		{100, 0},
		{100, 99},
		{100, 26}, // wraps
		{10, 0},
	}

	for i, tt := range tests {
		if got := s.Intn(tt.n); got != tt.want {
			t.Errorf("call %d: Intn(%d) = %d, want %d", i, tt.n, got, tt.want)
		}
	}
	if s.Calls() != 5 {
		t.Errorf("Calls() = %d, want 5", s.Calls())
	}
	if got := Roll(NewSequence(27), 100); got != 27 {
		t.Errorf("Roll() = %d, want 27", got)
	}
}

func TestLocked_SharesOneStream(t *testing.T) {
	ref, _, _ := NewSource(5)
	src, _, _ := NewSource(5)
	l := NewLocked(src)

	for i := 0; i < 10; i++ {
		if x, y := l.Intn(1000), ref.Intn(1000); x != y {
			t.Fatalf("draw %d = %d, want %d", i, x, y)
		}
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if v := l.Intn(6); v < 0 || v > 5 {
					t.Errorf("Intn(6) = %d", v)
				}
			}
		}()
	}
	wg.Wait()
}
