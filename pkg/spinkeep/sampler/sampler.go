// Package sampler draws pseudo-random byte offsets within a device's
// addressable range.
package sampler

import (
	"math/rand/v2"
	"sync"
)

// Sampler produces offsets in the half-open range [0, size).
type Sampler interface {
	Sample(size int64) int64
}

// Random is a Sampler backed by math/rand/v2.
// It is safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Random sampler. A zero seed draws from the runtime's
// random source; any other seed makes the sequence reproducible.
func New(seed uint64) *Random {
	if seed == 0 {
		return &Random{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return NewFromSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewFromSource returns a Random sampler drawing from src.
func NewFromSource(src rand.Source) *Random {
	return &Random{rng: rand.New(src)}
}

// Sample returns a uniformly distributed offset in [0, size).
// Sizes of zero or less yield 0.
func (r *Random) Sample(size int64) int64 {
	if size <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Int64N(size)
}

// Ensure Random implements Sampler.
var _ Sampler = (*Random)(nil)

// Func adapts an ordinary function to the Sampler interface.
type Func func(size int64) int64

// Sample calls f(size).
func (f Func) Sample(size int64) int64 {
	return f(size)
}

// Sequence returns a Sampler that replays offsets in order, wrapping
// around when exhausted. Each offset is reduced modulo size.
func Sequence(offsets ...int64) Sampler {
	var (
		mu sync.Mutex
		i  int
	)
	return Func(func(size int64) int64 {
		if len(offsets) == 0 || size <= 0 {
			return 0
		}
		mu.Lock()
		defer mu.Unlock()
		off := offsets[i%len(offsets)]
		i++
		return off % size
	})
}
