package datastream

import (
	"math"
	"math/rand"
)

// UniformDataGenerator draws keys 0..n-1 with equal probability. The CDF
// lookup mirrors the Zipf generator so both share the same access path.
type UniformDataGenerator struct {
	n   int
	cdf []float64
	rng *rand.Rand
}

func NewUniformDataGenerator(n int, seed int64) *UniformDataGenerator {
	cdf := make([]float64, n)
	for i := 0; i < n; i++ {
		cdf[i] = float64(i+1) / float64(n)
	}
	return &UniformDataGenerator{
		n:   n,
		cdf: cdf,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Next draws one key in 0..n-1.
func (u *UniformDataGenerator) Next() int64 {
	r := u.rng.Float64()
	lo, hi := 0, u.n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if r > u.cdf[mid] {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return int64(lo)
}

// GenerateSequence draws seqLen keys.
func (u *UniformDataGenerator) GenerateSequence(seqLen int) []int64 {
	seq := make([]int64, seqLen)
	for i := range seq {
		seq[i] = u.Next()
	}
	return seq
}

func (u *UniformDataGenerator) Close() error { return nil }

func (u *UniformDataGenerator) GetKeyMap() map[int64]float64 {
	result := make(map[int64]float64, u.n)
	for i := 0; i < u.n; i++ {
		result[int64(i)] = 1.0 / float64(u.n)
	}
	return result
}

func (u *UniformDataGenerator) GetCDF() []float64 {
	cdf := make([]float64, u.n)
	copy(cdf, u.cdf)
	return cdf
}

func (u *UniformDataGenerator) GetPDF() []float64 {
	pdf := make([]float64, u.n)
	for i := range pdf {
		pdf[i] = 1.0 / float64(u.n)
	}
	return pdf
}

func (u *UniformDataGenerator) Entropy() float64 {
	if u.n == 0 {
		return 0
	}
	p := 1.0 / float64(u.n)
	return -float64(u.n) * p * math.Log2(p)
}
