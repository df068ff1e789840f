package generator

import (
	"math"
	"testing"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

func TestNew_RejectsBadMatrix(t *testing.T) {
	bad := DefaultMatrix
	bad[1] = [States]float64{0.5, 0.5, 0.5}

	if _, err := New(Config{Matrix: bad}); err == nil {
		t.Fatalf("expected error for row not summing to 1")
	}

	neg := DefaultMatrix
	neg[0] = [States]float64{1.2, -0.2, 0}
	if _, err := New(Config{Matrix: neg}); err == nil {
		t.Fatalf("expected error for negative probability")
	}
}

func TestNew_RejectsBadInitial(t *testing.T) {
	if _, err := New(Config{Matrix: DefaultMatrix, Initial: status.Code(4)}); err == nil {
		t.Fatalf("expected error for invalid initial state")
	}
}

func TestNext_ReproducibleWithSeed(t *testing.T) {
	a, _ := New(Config{Matrix: DefaultMatrix, Seed: 42})
	b, _ := New(Config{Matrix: DefaultMatrix, Seed: 42})

	for i := 0; i < 1000; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("step %d diverged: %v vs %v", i, x, y)
		}
	}
}

func TestNext_AbsorbingState(t *testing.T) {
	m := Matrix{
		{0, 0, 1},
		{0, 0, 1},
		{0, 0, 1},
	}
	g, _ := New(Config{Matrix: m, Seed: 1})
	for i := 0; i < 100; i++ {
		if got := g.Next(); got != status.Drowsy {
			t.Fatalf("step %d: got=%v want=drowsy", i, got)
		}
	}
}

func TestNext_ConvergesToStationary(t *testing.T) {
	g, _ := New(Config{Matrix: DefaultMatrix, Initial: status.Normal, Seed: 7})

	const draws = 100_000
	var counts [States]int
	for i := 0; i < draws; i++ {
		counts[g.Next()]++
	}

	want := Stationary(DefaultMatrix)
	for s := 0; s < States; s++ {
		got := float64(counts[s]) / draws
		if math.Abs(got-want[s]) > 0.01 {
			t.Fatalf("state %d: empirical=%.4f analytic=%.4f", s, got, want[s])
		}
	}
}

func TestStationary_IsFixedPoint(t *testing.T) {
	pi := Stationary(DefaultMatrix)

	sum := 0.0
	for j := 0; j < States; j++ {
		v := 0.0
		for i := 0; i < States; i++ {
			v += pi[i] * DefaultMatrix[i][j]
		}
		if math.Abs(v-pi[j]) > 1e-9 {
			t.Fatalf("pi not stationary at %d: %v vs %v", j, v, pi[j])
		}
		sum += pi[j]
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("pi sums to %v", sum)
	}
}

func TestEmit_CounterRanges(t *testing.T) {
	g, _ := New(Config{Matrix: DefaultMatrix, Seed: 3})

	for i := 0; i < 5000; i++ {
		code, c := g.Emit()

		r := DefaultCalmRanges
		if code > status.Normal {
			r = DefaultFatigueRanges
		}
		if c.Blink < r.Blink.Min || c.Blink > r.Blink.Max ||
			c.Yawn < r.Yawn.Min || c.Yawn > r.Yawn.Max ||
			c.HeadNod < r.HeadNod.Min || c.HeadNod > r.HeadNod.Max {
			t.Fatalf("counters %+v out of range for %v", c, code)
		}
	}
}
