// Package datastream produces and replays keyed operation workloads for the
// skip-list benchmarks: uniform and Zipf key generators, and a binary bench
// file format that freezes a distribution plus an operation sequence so runs
// are reproducible across machines.
package datastream

// DataStream is the common generator surface.
type DataStream interface {
	Close() error
	Next() int64
	GetKeyMap() map[int64]float64
	GetCDF() []float64
	GetPDF() []float64
	Entropy() float64
}

// OperationType tags one workload operation.
type OperationType uint8

const (
	OpQuery OperationType = iota
	OpInsert
	OpDelete
)

func (t OperationType) String() string {
	switch t {
	case OpQuery:
		return "Query"
	case OpInsert:
		return "Insert"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Operation is one workload step.
type Operation struct {
	Type OperationType
	Key  int64
}

// SequenceModel replays a fixed operation sequence in order.
type SequenceModel struct {
	ops []Operation
	pos int
}

// NewSequenceModelFromOps copies ops into a replayable model.
func NewSequenceModelFromOps(ops []Operation) *SequenceModel {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return &SequenceModel{ops: cp}
}

// Next returns the next operation, or false once the sequence is spent.
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// NextN returns up to n following operations as a fresh slice.
func (m *SequenceModel) NextN(n int) []Operation {
	if n <= 0 || m.pos >= len(m.ops) {
		return nil
	}
	end := m.pos + n
	if end > len(m.ops) {
		end = len(m.ops)
	}
	out := make([]Operation, end-m.pos)
	copy(out, m.ops[m.pos:end])
	m.pos = end
	return out
}

// Len returns the total sequence length.
func (m *SequenceModel) Len() int { return len(m.ops) }

// Reset rewinds the model to the first operation.
func (m *SequenceModel) Reset() { m.pos = 0 }
