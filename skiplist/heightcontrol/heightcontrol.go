// Package heightcontrol holds the height-assignment policies for the skip
// list backings. A policy decides, per insertion, how many levels the new
// node participates in; the engines consult it nowhere else.
package heightcontrol

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/zeebo/xxh3"

	"github.com/skiplistlab/skiplist/skiplist"
)

// Control generates node heights. Implementations must return values in
// [1, maxAllowed] and must never rely on hidden global state, so that a
// seeded policy replays identically.
type Control[K any] interface {
	// MaxHeight is the hard cap this policy can ever hand out. The engines
	// size their head sentinel with it, so it is assumed constant after
	// construction.
	MaxHeight() int

	// NextHeight returns the height for key. maxAllowed is the engine's
	// current allowance, always in [1, MaxHeight()].
	NextHeight(key K, maxAllowed int) int
}

// Geometric simulates a capped geometric variable with the classic coin-flip
// loop: each success with probability p adds one level.
type Geometric[K any] struct {
	p   float64
	max int
	rng *rand.Rand
}

// NewGeometric builds a Geometric policy. p must lie strictly inside (0,1)
// and maxHeight must be at least 1.
func NewGeometric[K any](p float64, maxHeight int, seed int64) (*Geometric[K], error) {
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("%w: promotion probability %v outside (0,1)", skiplist.ErrBadConfig, p)
	}
	if maxHeight < 1 {
		return nil, fmt.Errorf("%w: max height %d", skiplist.ErrBadConfig, maxHeight)
	}
	return &Geometric[K]{
		p:   p,
		max: maxHeight,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

func (g *Geometric[K]) MaxHeight() int { return g.max }

// P reports the promotion probability the policy was built with.
func (g *Geometric[K]) P() float64 { return g.p }

func (g *Geometric[K]) NextHeight(_ K, maxAllowed int) int {
	if maxAllowed < 1 || maxAllowed > g.max {
		maxAllowed = g.max
	}
	h := 1
	for h < maxAllowed && g.rng.Float64() < g.p {
		h++
	}
	return h
}

// TwoPow draws heights with promotion probability 1/2 from a single random
// word: the probability of k trailing zero bits is (1/2)^(k+1). It is
// restricted to power-of-two caps so the mask trick applies.
type TwoPow[K any] struct {
	mask int // maxHeight - 1
	rng  *rand.Rand
}

func NewTwoPow[K any](maxHeight int, seed int64) (*TwoPow[K], error) {
	if maxHeight < 1 || maxHeight&(maxHeight-1) != 0 {
		return nil, fmt.Errorf("%w: TwoPow max height %d is not a power of two", skiplist.ErrBadConfig, maxHeight)
	}
	return &TwoPow[K]{
		mask: maxHeight - 1,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

func (t *TwoPow[K]) MaxHeight() int { return t.mask + 1 }

func (t *TwoPow[K]) NextHeight(_ K, maxAllowed int) int {
	h := bits.TrailingZeros64(t.rng.Uint64())&t.mask + 1
	if maxAllowed >= 1 && h > maxAllowed {
		h = maxAllowed
	}
	return h
}

// HashCoin derives the height from the trailing zeros of an xxh3 hash of
// the key, so a given key always gets the same height. The caller supplies
// the key encoding; the hash is expected to distribute uniformly, a skewed
// encoding skews the heights with it.
type HashCoin[K any] struct {
	max      int
	keyBytes func(K) []byte
}

func NewHashCoin[K any](maxHeight int, keyBytes func(K) []byte) (*HashCoin[K], error) {
	if maxHeight < 1 {
		return nil, fmt.Errorf("%w: max height %d", skiplist.ErrBadConfig, maxHeight)
	}
	if keyBytes == nil {
		return nil, fmt.Errorf("%w: nil key encoder", skiplist.ErrBadConfig)
	}
	return &HashCoin[K]{max: maxHeight, keyBytes: keyBytes}, nil
}

func (hc *HashCoin[K]) MaxHeight() int { return hc.max }

func (hc *HashCoin[K]) NextHeight(key K, maxAllowed int) int {
	if maxAllowed < 1 || maxAllowed > hc.max {
		maxAllowed = hc.max
	}
	h := bits.TrailingZeros64(xxh3.Hash(hc.keyBytes(key))) + 1
	if h > maxAllowed {
		h = maxAllowed
	}
	return h
}
