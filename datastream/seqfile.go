package datastream

import (
	"encoding/binary"
	"os"
)

// Raw sequence files are bare little-endian int64 keys, no header. They
// feed external plotting scripts; workloads with operations use the bench
// file format instead.

func writeSequenceFile(filename string, seq []int64) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, v := range seq {
		if err := binary.Write(file, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// WriteSequenceToFile draws k keys and writes them as a raw sequence file.
func (u *UniformDataGenerator) WriteSequenceToFile(filename string, k int) error {
	return writeSequenceFile(filename, u.GenerateSequence(k))
}

// WriteSequenceToFile draws k keys and writes them as a raw sequence file.
func (z *ZipfDataGenerator) WriteSequenceToFile(filename string, k int) error {
	return writeSequenceFile(filename, z.GenerateSequence(k))
}

// SequenceReader replays a raw sequence file.
type SequenceReader struct {
	seq []int64
	pos int
}

func NewSequenceReaderFromFile(filename string) (*SequenceReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var seq []int64
	var v int64
	for {
		if err := binary.Read(file, binary.LittleEndian, &v); err != nil {
			break
		}
		seq = append(seq, v)
	}
	return &SequenceReader{seq: seq}, nil
}

// Next returns the next key, or false once the sequence is spent.
func (sr *SequenceReader) Next() (int64, bool) {
	if sr.pos >= len(sr.seq) {
		return 0, false
	}
	v := sr.seq[sr.pos]
	sr.pos++
	return v, true
}

// Len returns the number of keys read from the file.
func (sr *SequenceReader) Len() int { return len(sr.seq) }
