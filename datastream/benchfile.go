package datastream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	randv2 "math/rand/v2"
	"os"
	"sort"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Bench file layout (LittleEndian):
//
//	[8]byte  Magic: "SLBENCH2"
//	uint16   Version: 2
//	uint8    Codec (0=raw, 1=snappy, 2=zstd, 3=lz4)
//	uint8    Reserved: 0
//	[]byte   Body, compressed per Codec
//
// Body:
//
//	uint32   DistCount
//	DistCount times:
//	  int64   Key
//	  float64 Weight      (keys written in ascending order)
//	uint64   OpCount
//	OpCount times:
//	  uint8   OperationType (0=Query, 1=Insert, 2=Delete)
//	  int64   Key

var (
	benchMagic   = [8]byte{'S', 'L', 'B', 'E', 'N', 'C', 'H', '2'}
	benchVersion = uint16(2)
)

// Codec selects the body compression of a bench file.
type Codec uint8

const (
	CodecRaw Codec = iota
	CodecSnappy
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecRaw:
		return "raw"
	case CodecSnappy:
		return "snappy"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec maps a codec name to its Codec value.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "raw", "":
		return CodecRaw, nil
	case "snappy":
		return CodecSnappy, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	}
	return 0, fmt.Errorf("unknown codec %q", s)
}

// BenchOp is one recorded workload operation.
type BenchOp struct {
	Type OperationType
	Key  int64
}

// BenchFile is a decoded bench file: the key distribution the workload was
// drawn from, plus the operation sequence itself.
type BenchFile struct {
	Dist map[int64]float64
	Ops  []BenchOp
}

// GenInfo summarizes a generated workload.
type GenInfo struct {
	Dist    map[int64]float64
	Entropy float64
}

// GenerateBenchFile builds a workload in memory.
//
// Parameters:
//   - n: number of distinct keys
//   - s, v: Zipf parameters; s = 0 selects the uniform distribution,
//     otherwise s > 1 and v >= 1 are required
//   - seed: PCG seed, so equal parameters reproduce the workload
//   - k: total operation count, k >= n so every key appears at least once
//   - phase1Ratio: share of ops in the first phase, which covers every key
//   - deleteRatio: chance a repeat access of a present key deletes it
//   - simpleKey: use keys 0..n-1 instead of random 32-bit keys
//
// The first phase inserts every key once (order shuffled) padded with draws
// from the distribution; repeat accesses become Query, or Delete with
// probability deleteRatio. The second phase draws ranks from the
// distribution under the same rules, reinserting keys deleted earlier.
func GenerateBenchFile(n int, s, v float64, seed uint64, k int, phase1Ratio, deleteRatio float64, simpleKey bool) (*BenchFile, *GenInfo, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("invalid n: %d", n)
	}
	if s != 0 && (s <= 1.0 || v < 1.0) {
		return nil, nil, fmt.Errorf("invalid zipf params: s=%v must >1, v=%v must >=1", s, v)
	}
	if k < n {
		return nil, nil, fmt.Errorf("k (%d) must be >= n (%d) to cover each key at least once", k, n)
	}
	phase1Size := int(float64(k) * phase1Ratio)
	if phase1Size < n || phase1Size > k {
		return nil, nil, fmt.Errorf("phase1 size (%d) must satisfy n <= size <= k", phase1Size)
	}
	if deleteRatio < 0.0 || deleteRatio > 1.0 {
		return nil, nil, fmt.Errorf("deleteRatio (%v) must be between 0.0 and 1.0", deleteRatio)
	}

	r := randv2.New(randv2.NewPCG(seed, 0))

	// rank -> key mapping, collision free.
	rankToKey := make([]int64, n)
	if simpleKey {
		for i := range rankToKey {
			rankToKey[i] = int64(i)
		}
		r.Shuffle(n, func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
	} else {
		seen := make(map[int64]struct{}, n)
		for i := range rankToKey {
			key := int64(r.Uint32())
			for _, dup := seen[key]; dup; _, dup = seen[key] {
				key = int64(r.Uint32())
			}
			rankToKey[i] = key
			seen[key] = struct{}{}
		}
	}

	// Per-rank probabilities, normalized.
	weights := make([]float64, n)
	if s == 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
	} else {
		var sum float64
		for i := range weights {
			w := 1.0 / math.Pow(v+float64(i), s)
			weights[i] = w
			sum += w
		}
		for i := range weights {
			weights[i] /= sum
		}
	}
	dist := make(map[int64]float64, n)
	for rank, key := range rankToKey {
		dist[key] = weights[rank]
	}

	drawRank := func() int { return r.IntN(n) }
	if s != 0 {
		zipf := randv2.NewZipf(r, s, v, uint64(n-1))
		drawRank = func() int { return int(zipf.Uint64()) }
	}

	// Phase one key list: full coverage up front, padded by draws, shuffled.
	phase1Keys := make([]int64, phase1Size)
	copy(phase1Keys, rankToKey)
	for i := n; i < phase1Size; i++ {
		phase1Keys[i] = rankToKey[drawRank()]
	}
	r.Shuffle(len(phase1Keys), func(i, j int) { phase1Keys[i], phase1Keys[j] = phase1Keys[j], phase1Keys[i] })

	present := make(map[int64]bool, n)
	ops := make([]BenchOp, 0, k)
	emit := func(key int64) {
		var op OperationType
		if !present[key] {
			op = OpInsert
			present[key] = true
		} else if r.Float64() < deleteRatio {
			op = OpDelete
			present[key] = false
		} else {
			op = OpQuery
		}
		ops = append(ops, BenchOp{Type: op, Key: key})
	}
	for _, key := range phase1Keys {
		emit(key)
	}
	for i := phase1Size; i < k; i++ {
		emit(rankToKey[drawRank()])
	}

	bf := &BenchFile{Dist: dist, Ops: ops}
	info := &GenInfo{Dist: dist, Entropy: EntropyFromDist(dist)}
	return bf, info, nil
}

func (bf *BenchFile) encodeBody() ([]byte, error) {
	var buf bytes.Buffer
	keys := make([]int64, 0, len(bf.Dist))
	for k := range bf.Dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(keys))); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := binary.Write(&buf, binary.LittleEndian, k); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, bf.Dist[k]); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(bf.Ops))); err != nil {
		return nil, err
	}
	for _, op := range bf.Ops {
		if err := binary.Write(&buf, binary.LittleEndian, uint8(op.Type)); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, op.Key); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func compressBody(body []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecRaw:
		return body, nil
	case CodecSnappy:
		return snappy.Encode(nil, body), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(body, nil), nil
	case CodecLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown codec %d", codec)
}

func decompressBody(payload []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecRaw:
		return payload, nil
	case CodecSnappy:
		return snappy.Decode(nil, payload)
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(payload, nil)
	case CodecLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
	}
	return nil, fmt.Errorf("unknown codec %d", codec)
}

// WriteBenchFile encodes bf to filename under the given codec.
func WriteBenchFile(filename string, bf *BenchFile, codec Codec) error {
	if bf == nil {
		return errors.New("nil BenchFile")
	}
	body, err := bf.encodeBody()
	if err != nil {
		return err
	}
	payload, err := compressBody(body, codec)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(benchMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, benchVersion); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, uint8(codec)); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, uint8(0)); err != nil { // reserved
		return err
	}
	_, err = file.Write(payload)
	return err
}

// ReadBenchFile decodes filename back into a BenchFile, reversing whatever
// codec it was written with.
func ReadBenchFile(filename string) (*BenchFile, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var magic [8]byte
	if _, err := io.ReadFull(fd, magic[:]); err != nil {
		return nil, err
	}
	if magic != benchMagic {
		return nil, fmt.Errorf("invalid magic: %q", magic)
	}
	var ver uint16
	if err := binary.Read(fd, binary.LittleEndian, &ver); err != nil {
		return nil, err
	}
	if ver != benchVersion {
		return nil, fmt.Errorf("unsupported version: %d", ver)
	}
	var codecByte, reserved uint8
	if err := binary.Read(fd, binary.LittleEndian, &codecByte); err != nil {
		return nil, err
	}
	if err := binary.Read(fd, binary.LittleEndian, &reserved); err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(fd)
	if err != nil {
		return nil, err
	}
	body, err := decompressBody(payload, Codec(codecByte))
	if err != nil {
		return nil, err
	}

	rd := bytes.NewReader(body)
	var distCount uint32
	if err := binary.Read(rd, binary.LittleEndian, &distCount); err != nil {
		return nil, err
	}
	dist := make(map[int64]float64, distCount)
	for i := uint32(0); i < distCount; i++ {
		var key int64
		var weight float64
		if err := binary.Read(rd, binary.LittleEndian, &key); err != nil {
			return nil, err
		}
		if err := binary.Read(rd, binary.LittleEndian, &weight); err != nil {
			return nil, err
		}
		dist[key] = weight
	}
	var opCount uint64
	if err := binary.Read(rd, binary.LittleEndian, &opCount); err != nil {
		return nil, err
	}
	ops := make([]BenchOp, 0, opCount)
	for i := uint64(0); i < opCount; i++ {
		var t uint8
		var key int64
		if err := binary.Read(rd, binary.LittleEndian, &t); err != nil {
			return nil, err
		}
		if err := binary.Read(rd, binary.LittleEndian, &key); err != nil {
			return nil, err
		}
		ops = append(ops, BenchOp{Type: OperationType(t), Key: key})
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// ToSequenceModel wraps the operation list into a replayable model.
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return NewSequenceModelFromOps(nil)
	}
	ops := make([]Operation, len(bf.Ops))
	for i, op := range bf.Ops {
		ops[i] = Operation{Type: op.Type, Key: op.Key}
	}
	return NewSequenceModelFromOps(ops)
}

// EntropyFromDist returns the entropy of a normalized distribution in bits.
// Non-positive weights are skipped.
func EntropyFromDist(dist map[int64]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
