package heightcontrol

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/skiplistlab/skiplist/skiplist"
)

func int64Bytes(key int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	return b[:]
}

func TestGeometricConfigValidation(t *testing.T) {
	cases := []struct {
		p   float64
		max int
	}{
		{0, 32},
		{1, 32},
		{-0.5, 32},
		{1.5, 32},
		{0.5, 0},
		{0.5, -3},
	}
	for _, c := range cases {
		if _, err := NewGeometric[int64](c.p, c.max, 1); !errors.Is(err, skiplist.ErrBadConfig) {
			t.Errorf("NewGeometric(%v, %d) err = %v, want ErrBadConfig", c.p, c.max, err)
		}
	}
}

func TestGeometricBounds(t *testing.T) {
	g, err := NewGeometric[int64](0.5, 32, 42)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10000; i++ {
		for _, maxAllowed := range []int{1, 2, 5, 32} {
			h := g.NextHeight(int64(i), maxAllowed)
			if h < 1 || h > maxAllowed {
				t.Fatalf("NextHeight gave %d with maxAllowed %d", h, maxAllowed)
			}
		}
	}
}

func TestGeometricSeedDeterminism(t *testing.T) {
	a, _ := NewGeometric[int64](0.5, 32, 7)
	b, _ := NewGeometric[int64](0.5, 32, 7)
	for i := 0; i < 1000; i++ {
		if ha, hb := a.NextHeight(int64(i), 32), b.NextHeight(int64(i), 32); ha != hb {
			t.Fatalf("same seed diverged at draw %d: %d vs %d", i, ha, hb)
		}
	}
}

func TestGeometricDistribution(t *testing.T) {
	g, _ := NewGeometric[int64](0.5, 32, 42)
	const draws = 200000
	counts := make([]int, 33)
	for i := 0; i < draws; i++ {
		counts[g.NextHeight(int64(i), 32)]++
	}
	// P(height >= k) should track 0.5^(k-1).
	tail := draws
	for k := 1; k <= 6; k++ {
		want := math.Pow(0.5, float64(k-1))
		got := float64(tail) / float64(draws)
		if math.Abs(got-want) > 0.02 {
			t.Errorf("P(height >= %d) = %.4f, want about %.4f", k, got, want)
		}
		tail -= counts[k]
	}
}

func TestTwoPowRequiresPowerOfTwo(t *testing.T) {
	for _, max := range []int{0, 3, 12, 33} {
		if _, err := NewTwoPow[int64](max, 1); !errors.Is(err, skiplist.ErrBadConfig) {
			t.Errorf("NewTwoPow(%d) err = %v, want ErrBadConfig", max, err)
		}
	}
	for _, max := range []int{1, 2, 16, 32} {
		tp, err := NewTwoPow[int64](max, 1)
		if err != nil {
			t.Fatalf("NewTwoPow(%d): %v", max, err)
		}
		for i := 0; i < 5000; i++ {
			if h := tp.NextHeight(0, max); h < 1 || h > max {
				t.Fatalf("NextHeight gave %d with max %d", h, max)
			}
		}
	}
}

func TestHashCoinDeterministicPerKey(t *testing.T) {
	hc, err := NewHashCoin[int64](32, int64Bytes)
	if err != nil {
		t.Fatal(err)
	}
	for key := int64(0); key < 1000; key++ {
		first := hc.NextHeight(key, 32)
		if first < 1 || first > 32 {
			t.Fatalf("NextHeight(%d) = %d out of bounds", key, first)
		}
		for i := 0; i < 5; i++ {
			if h := hc.NextHeight(key, 32); h != first {
				t.Fatalf("NextHeight(%d) not stable: %d then %d", key, first, h)
			}
		}
	}
}

func TestHashCoinValidation(t *testing.T) {
	if _, err := NewHashCoin[int64](0, int64Bytes); !errors.Is(err, skiplist.ErrBadConfig) {
		t.Errorf("zero max err = %v, want ErrBadConfig", err)
	}
	if _, err := NewHashCoin[int64](32, nil); !errors.Is(err, skiplist.ErrBadConfig) {
		t.Errorf("nil encoder err = %v, want ErrBadConfig", err)
	}
}
