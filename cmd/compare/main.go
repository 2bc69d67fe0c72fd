// compare builds the pointer and arena engines over the same Zipf key set,
// dumps their tower layouts and scores each with the distribution-weighted
// expected search cost.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/skiplistlab/skiplist/datastream"
	"github.com/skiplistlab/skiplist/skiplist"
	"github.com/skiplistlab/skiplist/skiplist/analy"
	"github.com/skiplistlab/skiplist/skiplist/arena"
	"github.com/skiplistlab/skiplist/skiplist/core"
)

func testOne(name string, sl skiplist.Analyable[int64, float64], kmap map[int64]float64, p float64) {
	fmt.Printf("=== %s ===\n", name)
	if err := analy.CheckStruct(sl); err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	fmt.Printf("score: %.6f\n\n", analy.AnalyzeStep(sl, kmap))
	analy.PrintSkipList(os.Stdout, sl, 40)
	fmt.Println()
	analy.LevelReport(os.Stdout, sl, p)
	fmt.Println()
}

func main() {
	var n int
	var seed int64
	var p float64

	flag.IntVar(&n, "n", 30, "number of keys")
	flag.Int64Var(&seed, "seed", 42, "seed for generator and engines")
	flag.Float64Var(&p, "p", 0.5, "promotion probability")
	flag.Parse()

	gen := datastream.NewZipfDataGenerator(n, 1.07, 1.0, seed)
	kmap := gen.GetKeyMap()

	coreSL, err := core.New[int64, float64](core.Config{P: p, Seed: seed})
	if err != nil {
		log.Fatalf("new core engine: %v", err)
	}
	for k, w := range kmap {
		coreSL.Insert(k, w)
	}
	testOne("core", coreSL, kmap, p)

	arenaSL, err := arena.New[int64, float64](p, seed)
	if err != nil {
		log.Fatalf("new arena engine: %v", err)
	}
	for k, w := range kmap {
		arenaSL.Insert(k, w)
	}
	testOne("arena", arenaSL, kmap, p)
}
