package sighashlock

import "errors"

// Buffer sizes a real host enforces. A HostAdapter implementation backed by real
// VM syscalls would size its stack buffers exactly this way; a script or
// witness read that would overflow its buffer fails with CodeScriptTooLong
// or CodeWitnessSize.
const (
	// WitnessBufSize bounds a single witness and the executing script.
	WitnessBufSize = 32 * 1024

	// StreamWindowSize bounds one window of a batched cell/input read
	// (see absorbObject in hasher.go).
	StreamWindowSize = 16 * 1024

	// InputBufSize bounds a single input object.
	InputBufSize = 4 * 1024
)

// Source identifies which side of the transaction an index refers to, the
// CKB-VM "source" syscall parameter.
type Source uint8

const (
	SourceInput Source = iota
	SourceOutput
	SourceGroupInput
)

// CellField identifies a single-field load against a cell or input, the
// CKB-VM "field" syscall parameter.
type CellField uint8

const (
	FieldCapacity CellField = iota
	FieldType
	FieldLock
	FieldSince
	FieldOutPoint
)

// ErrIndexOutOfBound is the host's "no such index" signal. It is not an
// error when used as a loop terminator (§4.4, §4.5, the batched streaming
// loop in §4.2); it is fatal and propagated when it results from an
// explicit index reference inside a CoverageOp.
var ErrIndexOutOfBound = errors.New("sighashlock: index out of bound")

// HostAdapter is the set of bounded reads this package consumes from the
// host VM. Every method either fills buf and returns the
// authoritative object length (which may exceed len(buf), exactly like the
// real syscalls; callers in this package never retry with a larger buffer,
// they either fail with a size Code or continue with windowed offset
// reads), or returns ErrIndexOutOfBound, or returns another error which is
// always fatal.
//
// Implementations are expected to be read-only and side-effect-free. The
// zeroing of the lock script's signature field before the first group
// witness is absorbed (§4.5 step 1) is done by finalizeWitnesses on its own
// copy of the witness bytes, not by the HostAdapter.
type HostAdapter interface {
	// LoadTxHash reads the transaction hash into buf, returning the
	// reported length.
	LoadTxHash(buf []byte) (int, error)

	// LoadScript reads the currently executing script (molecule-encoded
	// Script) into buf, returning the reported length.
	LoadScript(buf []byte) (int, error)

	// LoadWitness reads witness[index] from source into buf, returning
	// the reported length.
	LoadWitness(index int, source Source, buf []byte) (int, error)

	// LoadCell reads the full serialized CellOutput at index/source
	// into buf, returning the reported length. offset supports the
	// windowed reads absorbObject performs.
	LoadCell(index int, source Source, offset int, buf []byte) (int, error)

	// LoadCellData reads the cell data at index/source into buf,
	// returning the reported length. offset supports windowed reads.
	LoadCellData(index int, source Source, offset int, buf []byte) (int, error)

	// LoadCellByField reads a single field (FieldCapacity, FieldType,
	// FieldLock) of the cell at index/source into buf.
	LoadCellByField(index int, source Source, field CellField, buf []byte) (int, error)

	// LoadInput reads the full serialized CellInput at index/source
	// into buf, returning the reported length. offset supports windowed
	// reads.
	LoadInput(index int, source Source, offset int, buf []byte) (int, error)

	// LoadInputByField reads a single field (FieldSince, FieldOutPoint)
	// of the input at index/source into buf.
	LoadInputByField(index int, source Source, field CellField, buf []byte) (int, error)

	// CalculateInputsLen returns the total number of inputs in the
	// transaction (N in §4.5 step 4).
	CalculateInputsLen() (uint64, error)
}
