// internal/poller/backoff.go
package poller

import "time"

// Backoff doubles the wait for every consecutive unexpected cycle:
// min(Max, Base*2^n), n counting from 1.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
	n    int
}

// Next returns the next wait and counts the failure.
func (b *Backoff) Next() time.Duration {
	b.n++

	d := b.Base
	for i := 0; i < b.n; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	return d
}

// Reset forgets previous failures.
func (b *Backoff) Reset() {
	b.n = 0
}
