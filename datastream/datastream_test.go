package datastream

import (
	"math"
	"sort"
	"testing"
)

func TestUniformGenerator(t *testing.T) {
	gen := NewUniformDataGenerator(100, 42)
	for i := 0; i < 10000; i++ {
		k := gen.Next()
		if k < 0 || k >= 100 {
			t.Fatalf("Next = %d outside 0..99", k)
		}
	}
	if h := gen.Entropy(); math.Abs(h-math.Log2(100)) > 1e-9 {
		t.Fatalf("entropy = %v, want log2(100)", h)
	}
	kmap := gen.GetKeyMap()
	if len(kmap) != 100 {
		t.Fatalf("key map holds %d keys", len(kmap))
	}
	for k, p := range kmap {
		if math.Abs(p-0.01) > 1e-9 {
			t.Fatalf("key %d weight %v, want 0.01", k, p)
		}
	}
}

func TestUniformSeedDeterminism(t *testing.T) {
	a := NewUniformDataGenerator(50, 7)
	b := NewUniformDataGenerator(50, 7)
	for i := 0; i < 1000; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("same seed diverged at draw %d", i)
		}
	}
}

func TestZipfGenerator(t *testing.T) {
	gen := NewZipfDataGenerator(100, 1.07, 1.0, 42)

	pdf := gen.GetPDF()
	sum := 0.0
	for _, p := range pdf {
		if p < 0 {
			t.Fatalf("negative weight %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %v", sum)
	}

	cdf := gen.GetCDF()
	if !sort.Float64sAreSorted(cdf) {
		t.Fatal("CDF not monotonic")
	}
	if math.Abs(cdf[len(cdf)-1]-1.0) > 1e-9 {
		t.Fatalf("CDF ends at %v", cdf[len(cdf)-1])
	}

	for i := 0; i < 10000; i++ {
		k := gen.Next()
		if k < 0 || k >= 100 {
			t.Fatalf("Next = %d outside 0..99", k)
		}
	}
}

func TestZipfEntropyBelowUniform(t *testing.T) {
	zipf := NewZipfDataGenerator(1000, 1.5, 1.0, 42)
	uniform := NewUniformDataGenerator(1000, 42)
	if zipf.Entropy() >= uniform.Entropy() {
		t.Fatalf("zipf entropy %v not below uniform %v", zipf.Entropy(), uniform.Entropy())
	}
}

func TestSequenceModel(t *testing.T) {
	ops := []Operation{
		{Type: OpInsert, Key: 1},
		{Type: OpQuery, Key: 1},
		{Type: OpDelete, Key: 1},
	}
	m := NewSequenceModelFromOps(ops)
	for i := range ops {
		op, ok := m.Next()
		if !ok || op != ops[i] {
			t.Fatalf("op %d = %+v, %v", i, op, ok)
		}
	}
	if _, ok := m.Next(); ok {
		t.Fatal("Next past the end reported an op")
	}
	m.Reset()
	if batch := m.NextN(2); len(batch) != 2 || batch[0] != ops[0] {
		t.Fatalf("NextN(2) = %+v", batch)
	}
	if batch := m.NextN(5); len(batch) != 1 {
		t.Fatalf("NextN past the end returned %d ops", len(batch))
	}
}

func TestSequenceFileRoundTrip(t *testing.T) {
	gen := NewZipfDataGenerator(20, 1.07, 1.0, 3)
	path := t.TempDir() + "/seq.bin"
	if err := gen.WriteSequenceToFile(path, 100); err != nil {
		t.Fatal(err)
	}
	rd, err := NewSequenceReaderFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rd.Len() != 100 {
		t.Fatalf("read %d keys, want 100", rd.Len())
	}
	for {
		k, ok := rd.Next()
		if !ok {
			break
		}
		if k < 0 || k >= 20 {
			t.Fatalf("key %d outside 0..19", k)
		}
	}
}

func TestOperationTypeString(t *testing.T) {
	for op, want := range map[OperationType]string{
		OpQuery:           "Query",
		OpInsert:          "Insert",
		OpDelete:          "Delete",
		OperationType(99): "Unknown",
	} {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", op, got, want)
		}
	}
}
