// tunep searches for the promotion probability that minimizes replay time
// of a recorded workload, using simulated annealing instead of a grid
// sweep. The cost of a candidate p is the total wall time of replaying
// every loaded bench file, averaged over -runs repetitions.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/skiplistlab/skiplist/datastream"
	"github.com/skiplistlab/skiplist/saalgo"
	"github.com/skiplistlab/skiplist/skiplist/core"
)

const (
	pMin = 0.05
	pMax = 0.95
)

// pSolution is one candidate promotion probability.
type pSolution struct {
	p     float64
	rng   *rand.Rand
	seed  int64
	runs  int
	bench []*datastream.BenchFile
}

func (s *pSolution) Clone() saalgo.Solution {
	cp := *s
	return &cp
}

// GetCost replays every bench file runs times and returns the summed
// average wall time in milliseconds.
func (s *pSolution) GetCost() float64 {
	total := 0.0
	for _, bf := range s.bench {
		fileMs := 0.0
		for i := 0; i < s.runs; i++ {
			sl, err := core.New[int64, float64](core.Config{P: s.p, Seed: s.seed})
			if err != nil {
				log.Fatalf("new engine with p=%v: %v", s.p, err)
			}
			start := time.Now()
			for _, op := range bf.Ops {
				switch op.Type {
				case datastream.OpQuery:
					sl.Get(op.Key)
				case datastream.OpInsert:
					sl.Insert(op.Key, bf.Dist[op.Key])
				case datastream.OpDelete:
					sl.Delete(op.Key)
				}
			}
			fileMs += float64(time.Since(start).Microseconds()) / 1000.0
		}
		total += fileMs / float64(s.runs)
	}
	return total
}

// GenerateNeighbor nudges p by a small step, clamped to [pMin, pMax].
func (s *pSolution) GenerateNeighbor() saalgo.Solution {
	cp := *s
	cp.p += (s.rng.Float64() - 0.5) * 0.2
	if cp.p < pMin {
		cp.p = pMin
	}
	if cp.p > pMax {
		cp.p = pMax
	}
	return &cp
}

func main() {
	var benchPath string
	var benchDir string
	var runs int
	var seed int64
	var initialP float64
	var maxIter int

	flag.StringVar(&benchPath, "bench", "", "single bench file path")
	flag.StringVar(&benchDir, "benchdir", "", "directory of bench files (all .bin files)")
	flag.IntVar(&runs, "runs", 3, "replays per cost evaluation")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for engines and the annealer")
	flag.Float64Var(&initialP, "p", 0.5, "initial promotion probability")
	flag.IntVar(&maxIter, "maxiter", 200, "annealing iteration budget")
	flag.Parse()

	var files []string
	if benchDir != "" {
		matched, err := filepath.Glob(filepath.Join(benchDir, "*.bin"))
		if err != nil {
			log.Fatalf("scan directory: %v", err)
		}
		if len(matched) == 0 {
			log.Fatalf("no .bin files found in directory: %s", benchDir)
		}
		files = matched
	} else if benchPath != "" {
		files = []string{benchPath}
	} else {
		log.Fatal("either -bench or -benchdir must be provided")
	}

	bench := make([]*datastream.BenchFile, 0, len(files))
	totalOps := 0
	for _, f := range files {
		bf, err := datastream.ReadBenchFile(f)
		if err != nil {
			log.Fatalf("read bench file %s: %v", f, err)
		}
		bench = append(bench, bf)
		totalOps += len(bf.Ops)
		fmt.Printf("  - %s: %d ops\n", filepath.Base(f), len(bf.Ops))
	}
	fmt.Printf("loaded %d files, %d ops total\n\n", len(bench), totalOps)

	initial := &pSolution{
		p:     initialP,
		rng:   rand.New(rand.NewSource(seed)),
		seed:  seed,
		runs:  runs,
		bench: bench,
	}

	cfg := saalgo.DefaultConfig()
	cfg.InitialTemp = 100.0
	cfg.FinalTemp = 0.5
	cfg.Iterations = 10
	cfg.MaxIterations = maxIter
	cfg.RandomSeed = seed
	cfg.ProgressInterval = 10
	cfg.ProgressCallback = func(iter, maxIter int, temp, bestCost, curCost float64) {
		fmt.Printf("iter %d/%d  T=%.2f  best=%.3fms  current=%.3fms\n", iter, maxIter, temp, bestCost, curCost)
	}

	sa := saalgo.NewSimulatedAnnealing(cfg)
	best, cost := sa.Run(initial)

	fmt.Printf("\nbest p: %.4f\n", best.(*pSolution).p)
	fmt.Printf("cost: %.3f ms (summed per-file averages)\n", cost)
	fmt.Printf("iterations: %d\n", sa.GetIterations())
}
