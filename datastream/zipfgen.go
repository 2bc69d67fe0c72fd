package datastream

import (
	"math"
	"math/rand"
)

// ZipfDataGenerator draws keys 0..n-1 under a shuffled Zipf distribution:
// weight(rank) = 1/(rank+b)^a, normalized, then randomly assigned to keys so
// the hot keys are scattered over the key space.
type ZipfDataGenerator struct {
	n       int
	a, b    float64
	Weights []float64
	cdf     []float64
	rng     *rand.Rand
}

func NewZipfDataGenerator(n int, a, b float64, seed int64) *ZipfDataGenerator {
	rng := rand.New(rand.NewSource(seed))
	weights := make([]float64, n)
	var sum float64
	for i := 1; i <= n; i++ {
		weights[i-1] = 1.0 / math.Pow(float64(i)+b, a)
		sum += weights[i-1]
	}
	for i := range weights {
		weights[i] /= sum
	}
	rng.Shuffle(len(weights), func(i, j int) {
		weights[i], weights[j] = weights[j], weights[i]
	})
	cdf := make([]float64, n)
	run := 0.0
	for i, w := range weights {
		run += w
		cdf[i] = run
	}
	return &ZipfDataGenerator{
		n:       n,
		a:       a,
		b:       b,
		Weights: weights,
		cdf:     cdf,
		rng:     rng,
	}
}

// Next draws one key in 0..n-1 by binary search over the CDF.
func (z *ZipfDataGenerator) Next() int64 {
	r := z.rng.Float64()
	lo, hi := 0, z.n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if r > z.cdf[mid] {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return int64(lo)
}

// GenerateSequence draws seqLen keys.
func (z *ZipfDataGenerator) GenerateSequence(seqLen int) []int64 {
	seq := make([]int64, seqLen)
	for i := range seq {
		seq[i] = z.Next()
	}
	return seq
}

func (z *ZipfDataGenerator) Close() error { return nil }

func (z *ZipfDataGenerator) GetKeyMap() map[int64]float64 {
	result := make(map[int64]float64, z.n)
	for i := 0; i < z.n; i++ {
		result[int64(i)] = z.Weights[i]
	}
	return result
}

// GetCDF recomputes the cumulative distribution into a fresh slice so the
// caller cannot disturb the generator's own copy.
func (z *ZipfDataGenerator) GetCDF() []float64 {
	cdf := make([]float64, len(z.Weights))
	sum := 0.0
	for i, w := range z.Weights {
		sum += w
		cdf[i] = sum
	}
	return cdf
}

func (z *ZipfDataGenerator) GetPDF() []float64 {
	pdf := make([]float64, len(z.Weights))
	copy(pdf, z.Weights)
	return pdf
}

func (z *ZipfDataGenerator) Entropy() float64 {
	h := 0.0
	for _, p := range z.Weights {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
