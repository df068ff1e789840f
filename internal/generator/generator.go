// Package generator produces a plausible fatigue status sequence from a
// discrete-time Markov chain, standing in for a live sensor.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// States is the number of fatigue levels.
const States = 3

// Matrix is a row-stochastic transition matrix: Matrix[i][j] = P(next=j | current=i).
type Matrix [States][States]float64

// DefaultMatrix favours staying in the current level.
var DefaultMatrix = Matrix{
	{0.7, 0.25, 0.05},
	{0.4, 0.4, 0.2},
	{0.1, 0.3, 0.6},
}

const rowTolerance = 1e-9

// Validate checks every row is a probability distribution.
func (m Matrix) Validate() error {
	for i, row := range m {
		sum := 0.0
		for j, p := range row {
			if p < 0 || math.IsNaN(p) {
				return fmt.Errorf("generator: matrix[%d][%d]=%v must be >= 0", i, j, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > rowTolerance {
			return fmt.Errorf("generator: matrix row %d sums to %v, want 1", i, sum)
		}
	}
	return nil
}

// Range is an inclusive [Min, Max] draw range.
type Range struct {
	Min int
	Max int
}

// CounterRanges sets the draw ranges for the behavioral counters.
type CounterRanges struct {
	Blink   Range
	Yawn    Range
	HeadNod Range
}

// DefaultCalmRanges apply while the status is Normal.
var DefaultCalmRanges = CounterRanges{
	Blink:   Range{0, 10},
	Yawn:    Range{0, 2},
	HeadNod: Range{0, 3},
}

// DefaultFatigueRanges apply while the status is above Normal.
var DefaultFatigueRanges = CounterRanges{
	Blink:   Range{0, 30},
	Yawn:    Range{0, 5},
	HeadNod: Range{0, 8},
}

// Config is the generator's immutable setup.
type Config struct {
	Matrix  Matrix
	Initial status.Code
	Seed    int64

	Calm    CounterRanges
	Fatigue CounterRanges
}

// Generator is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	matrix  Matrix
	current status.Code
	calm    CounterRanges
	fatigue CounterRanges
}

// New creates a generator. A zero Calm/Fatigue range set falls back to the defaults.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Matrix.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Initial.Valid() {
		return nil, errors.New("generator: initial state must be 0, 1 or 2")
	}
	if cfg.Calm == (CounterRanges{}) {
		cfg.Calm = DefaultCalmRanges
	}
	if cfg.Fatigue == (CounterRanges{}) {
		cfg.Fatigue = DefaultFatigueRanges
	}
	for _, r := range []Range{
		cfg.Calm.Blink, cfg.Calm.Yawn, cfg.Calm.HeadNod,
		cfg.Fatigue.Blink, cfg.Fatigue.Yawn, cfg.Fatigue.HeadNod,
	} {
		if r.Min < 0 || r.Max < r.Min {
			return nil, fmt.Errorf("generator: invalid counter range %d..%d", r.Min, r.Max)
		}
	}

	return &Generator{
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		matrix:  cfg.Matrix,
		current: cfg.Initial,
		calm:    cfg.Calm,
		fatigue: cfg.Fatigue,
	}, nil
}

// Current returns the state without advancing the chain.
func (g *Generator) Current() status.Code {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Next advances the chain by one step and returns the new state.
func (g *Generator) Next() status.Code {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.step()
}

// Emit advances the chain and draws the counters for the new state.
func (g *Generator) Emit() (status.Code, status.Counters) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := g.step()

	ranges := g.calm
	if code > status.Normal {
		ranges = g.fatigue
	}
	return code, status.Counters{
		Blink:   g.draw(ranges.Blink),
		Yawn:    g.draw(ranges.Yawn),
		HeadNod: g.draw(ranges.HeadNod),
	}
}

// step walks the cumulative distribution of the current row and commits to
// the first state whose cumulative probability exceeds the sample.
func (g *Generator) step() status.Code {
	r := g.rng.Float64()
	row := g.matrix[g.current]

	cumulative := 0.0
	for next, p := range row {
		cumulative += p
		if r < cumulative {
			g.current = status.Code(next)
			return g.current
		}
	}
	// Rounding left r above the last cumulative sum: take the last reachable state.
	for next := States - 1; next >= 0; next-- {
		if row[next] > 0 {
			g.current = status.Code(next)
			break
		}
	}
	return g.current
}

func (g *Generator) draw(r Range) int {
	return r.Min + g.rng.Intn(r.Max-r.Min+1)
}

// Stationary returns the chain's stationary distribution by power iteration.
func Stationary(m Matrix) [States]float64 {
	var pi [States]float64
	for i := range pi {
		pi[i] = 1.0 / States
	}

	for iter := 0; iter < 10_000; iter++ {
		var next [States]float64
		for i := 0; i < States; i++ {
			for j := 0; j < States; j++ {
				next[j] += pi[i] * m[i][j]
			}
		}

		delta := 0.0
		for i := range next {
			delta += math.Abs(next[i] - pi[i])
		}
		pi = next
		if delta < 1e-12 {
			break
		}
	}
	return pi
}
