// benchrun replays recorded workloads against the skip-list engines and
// prints timing plus expected-search-cost tables. Input is an existing
// bench file, a directory of them, or generation parameters with -out.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/skiplistlab/skiplist/datastream"
	"github.com/skiplistlab/skiplist/skiplist"
	"github.com/skiplistlab/skiplist/skiplist/analy"
	"github.com/skiplistlab/skiplist/skiplist/arena"
	"github.com/skiplistlab/skiplist/skiplist/core"
	"github.com/skiplistlab/skiplist/skiplist/heightcontrol"
)

func main() {
	var file string
	var dir string
	var out string
	var codecName string
	var n int
	var s float64
	var v float64
	var k int
	var seed int64
	var phase1Ratio float64
	var deleteRatio float64

	var impls string
	var runs int
	var p float64

	flag.StringVar(&file, "file", "", "existing bench file (SLBENCH2 format)")
	flag.StringVar(&dir, "dir", "", "directory of bench files to test (all .bin files)")
	flag.StringVar(&out, "out", "", "output path to write a generated bench file")
	flag.StringVar(&codecName, "codec", "raw", "codec for generated files: raw, snappy, zstd, lz4")
	flag.IntVar(&n, "n", 0, "number of keys to generate")
	flag.Float64Var(&s, "s", 1.07, "Zipf parameter s (0 = uniform)")
	flag.Float64Var(&v, "v", 1.0, "Zipf parameter v")
	flag.IntVar(&k, "k", 0, "number of operations to generate")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators and engines")
	flag.Float64Var(&phase1Ratio, "phase1Ratio", 0.5, "ratio of phase1 operations")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "ratio of delete operations")

	flag.StringVar(&impls, "impl", "all", "engines to run: all or comma list (core,arena,twopow,hashcoin)")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat each benchmark")
	flag.Float64Var(&p, "p", 0.5, "promotion probability for the geometric engines")
	flag.Parse()

	var benchPaths []string
	if dir != "" {
		files, err := collectBenchFilesFromDir(dir)
		if err != nil {
			log.Fatalf("scan directory %s: %v", dir, err)
		}
		if len(files) == 0 {
			log.Fatalf("no .bin files found in directory: %s", dir)
		}
		benchPaths = files
		fmt.Printf("Found %d bench files in directory: %s\n", len(benchPaths), dir)
	} else if file != "" {
		benchPaths = []string{file}
		fmt.Printf("bench_file: %s\n", file)
	} else {
		if out == "" {
			log.Fatalf("either -file, -dir, or -out with generation params (-n,-s,-v,-k,-seed) must be provided")
		}
		if n <= 0 || k < 0 {
			log.Fatalf("invalid -n or -k: n=%d k=%d", n, k)
		}
		codec, err := datastream.ParseCodec(codecName)
		if err != nil {
			log.Fatalf("%v", err)
		}
		bf, _, err := datastream.GenerateBenchFile(n, s, v, uint64(seed), k, phase1Ratio, deleteRatio, false)
		if err != nil {
			log.Fatalf("generate bench file: %v", err)
		}
		if err := datastream.WriteBenchFile(out, bf, codec); err != nil {
			log.Fatalf("write bench file: %v", err)
		}
		fmt.Printf("generated bench_file: %s (%s)\n", out, codec)
		benchPaths = []string{out}
	}

	toRun := parseImpls(impls)
	fmt.Printf("engines to test: %s\n", strings.Join(toRun, ","))
	fmt.Println(strings.Repeat("=", 80))

	for i, benchPath := range benchPaths {
		if len(benchPaths) > 1 {
			fmt.Printf("[%d/%d] %s\n", i+1, len(benchPaths), filepath.Base(benchPath))
		}
		runBenchmark(benchPath, toRun, runs, seed, p)
	}
}

func collectBenchFilesFromDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func runBenchmark(benchPath string, toRun []string, runs int, seed int64, p float64) {
	bf, err := datastream.ReadBenchFile(benchPath)
	if err != nil {
		log.Printf("ERROR reading bench file %s: %v", benchPath, err)
		return
	}

	fmt.Printf("bench_file: %s\n", benchPath)
	fmt.Printf("ops: %d\n", len(bf.Ops))
	fmt.Printf("entropy: %.6f\n", datastream.EntropyFromDist(bf.Dist))

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		fmt.Printf("benchmarking %s...\n", impl)
		stats := benchmarkImpl(bf, impl, runs, seed, p)
		thr := float64(len(bf.Ops)) / (stats.avgMs / 1000.0)
		steps := "N/A"
		if !math.IsNaN(stats.avgSteps) {
			steps = fmt.Sprintf("%.6f", stats.avgSteps)
		}
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", runs),
			fmt.Sprintf("%.3f", stats.avgMs),
			fmt.Sprintf("%.3f", stats.minMs),
			fmt.Sprintf("%.3f", stats.maxMs),
			fmt.Sprintf("%.2f", thr),
			steps,
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Engine", "Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "AvgSteps"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

type benchStats struct {
	avgMs    float64
	minMs    float64
	maxMs    float64
	avgSteps float64 // from one run, structure dependent
}

func benchmarkImpl(bf *datastream.BenchFile, impl string, runs int, seed int64, p float64) benchStats {
	durations := make([]float64, 0, runs)
	sampleSteps := math.NaN()
	for i := 0; i < runs; i++ {
		sl := newImpl(impl, seed, p)
		elapsed := runOpsAndTime(sl, bf)
		durations = append(durations, float64(elapsed.Microseconds())/1000.0)
		if math.IsNaN(sampleSteps) {
			if a, ok := sl.(skiplist.Analyable[int64, float64]); ok {
				sampleSteps = analy.AnalyzeStep(a, bf.Dist)
			}
		}
	}
	sort.Float64s(durations)
	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	return benchStats{
		avgMs:    sum / float64(len(durations)),
		minMs:    durations[0],
		maxMs:    durations[len(durations)-1],
		avgSteps: sampleSteps,
	}
}

func int64Bytes(key int64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(key >> (8 * i))
	}
	return b[:]
}

func newImpl(impl string, seed int64, p float64) skiplist.SkipList[int64, float64] {
	switch impl {
	case "core":
		sl, err := core.New[int64, float64](core.Config{P: p, Seed: seed})
		if err != nil {
			log.Fatalf("new core engine: %v", err)
		}
		return sl
	case "arena":
		sl, err := arena.New[int64, float64](p, seed)
		if err != nil {
			log.Fatalf("new arena engine: %v", err)
		}
		return sl
	case "twopow":
		ctl, err := heightcontrol.NewTwoPow[int64](32, seed)
		if err != nil {
			log.Fatalf("new twopow control: %v", err)
		}
		sl, err := core.NewWithControl[int64, float64](ctl)
		if err != nil {
			log.Fatalf("new twopow engine: %v", err)
		}
		return sl
	case "hashcoin":
		ctl, err := heightcontrol.NewHashCoin[int64](32, int64Bytes)
		if err != nil {
			log.Fatalf("new hashcoin control: %v", err)
		}
		sl, err := core.NewWithControl[int64, float64](ctl)
		if err != nil {
			log.Fatalf("new hashcoin engine: %v", err)
		}
		return sl
	default:
		log.Fatalf("unknown -impl: %s", impl)
		return nil
	}
}

func runOpsAndTime(sl skiplist.SkipList[int64, float64], bf *datastream.BenchFile) time.Duration {
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
	return time.Since(start)
}

func parseImpls(s string) []string {
	if s == "" || s == "all" {
		return []string{"core", "arena", "twopow", "hashcoin"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		t := strings.TrimSpace(strings.ToLower(p))
		if t == "" || seen[t] {
			continue
		}
		switch t {
		case "core", "arena", "twopow", "hashcoin":
			out = append(out, t)
			seen[t] = true
		}
	}
	if len(out) == 0 {
		return []string{"core", "arena", "twopow", "hashcoin"}
	}
	return out
}
