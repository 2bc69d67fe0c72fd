// genbrench generates bench workload files. Filenames encode the
// generation parameters when no prefix is given, so a directory of files
// stays self-describing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/skiplistlab/skiplist/datastream"
)

// parseScientificNotation accepts plain integers or forms like "1e5".
func parseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// formatScientific renders n compactly for filenames, "1e5" style.
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp := 0
	temp := n
	for temp >= 10 {
		temp /= 10
		exp++
	}
	divisor := 1
	for i := 0; i < exp; i++ {
		divisor *= 10
	}
	coefficient := float64(n) / float64(divisor)
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal renders f without a dot for filenames: 1.07 -> "1_07".
func formatDecimal(f float64) string {
	val := int(f * 100)
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

func main() {
	var out string
	var path string
	var nStr string
	var s float64
	var v float64
	var kStr string
	var seed int64
	var phase1Ratio float64
	var deleteRatio float64
	var nums int
	var simpleKey bool
	var codecName string

	flag.StringVar(&nStr, "n", "0", "number of keys (accepts scientific notation, e.g. 1e5)")
	flag.Float64Var(&s, "s", 1.07, "Zipf parameter s (0 = uniform distribution)")
	flag.Float64Var(&v, "v", 1.0, "Zipf parameter v (used when s > 0)")
	flag.StringVar(&kStr, "k", "0", "number of operations (accepts scientific notation, e.g. 1e6)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "base seed; file i uses seed+i")
	flag.Float64Var(&phase1Ratio, "phase1Ratio", 0.5, "ratio of phase1 operations")
	flag.Float64Var(&deleteRatio, "deleteRatio", 0.1, "ratio of delete operations")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (auto-generated when empty)")
	flag.StringVar(&path, "path", ".", "output directory")
	flag.BoolVar(&simpleKey, "simplekey", false, "use keys 0..n-1 instead of random keys")
	flag.StringVar(&codecName, "codec", "raw", "body codec: raw, snappy, zstd, lz4")
	flag.Parse()

	n, err := parseScientificNotation(nStr)
	if err != nil {
		log.Fatalf("parse -n: %v", err)
	}
	k, err := parseScientificNotation(kStr)
	if err != nil {
		log.Fatalf("parse -k: %v", err)
	}
	codec, err := datastream.ParseCodec(codecName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if out == "" {
		out = fmt.Sprintf("bench_n%s_k%s_s%s_v%s_p1r%s_dr%s",
			formatScientific(n),
			formatScientific(k),
			formatDecimal(s),
			formatDecimal(v),
			formatDecimal(phase1Ratio),
			formatDecimal(deleteRatio))
	}

	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("create output directory: %v", err)
		}
	}

	fmt.Printf("generation parameters:\n")
	fmt.Printf("  n (keys): %d\n", n)
	fmt.Printf("  k (operations): %d\n", k)
	fmt.Printf("  s: %.2f\n", s)
	fmt.Printf("  v: %.2f\n", v)
	fmt.Printf("  phase1Ratio: %.2f\n", phase1Ratio)
	fmt.Printf("  deleteRatio: %.2f\n", deleteRatio)
	fmt.Printf("  seed: %d\n", seed)
	fmt.Printf("  codec: %s\n", codec)
	fmt.Printf("  files: %d\n", nums)
	fmt.Printf("  directory: %s\n", path)
	fmt.Printf("  prefix: %s\n\n", out)

	for i := 0; i < nums; i++ {
		filename := fmt.Sprintf("%s.bin", out)
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)
		fmt.Printf("generating %s...\n", outfile)
		bf, info, err := datastream.GenerateBenchFile(n, s, v, uint64(seed+int64(i)), k, phase1Ratio, deleteRatio, simpleKey)
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		if err := datastream.WriteBenchFile(outfile, bf, codec); err != nil {
			log.Fatalf("write: %v", err)
		}
		fmt.Printf("  entropy: %.6f\n", info.Entropy)
	}
	fmt.Println("done")
}
