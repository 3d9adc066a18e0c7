package simhost

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Plain, hand-rolled molecule encoders mirroring the decoders in
// sighashlock/molecule.go. Real CKB transactions split "raw transaction"
// (hashed) fields from witnesses (not hashed directly, only through the
// coverage array and the finalizer's length-prefixed absorption); this
// package models that split with an explicit TxHash field rather than
// recomputing it from the raw fields, since nothing here needs a real
// chain's hash algorithm to be self-consistent.

// OutPoint names a previously created cell.
type OutPoint struct {
	TxHash chainhash.Hash
	Index  uint32
}

func (o OutPoint) serialize() []byte {
	buf := make([]byte, 36)
	copy(buf[:32], o.TxHash[:])
	binary.LittleEndian.PutUint32(buf[32:], o.Index)
	return buf
}

// CellInput is a struct type in molecule: since and previous_output are
// both fixed-size, so the whole thing is packed with no offset table.
type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

func (in CellInput) serialize() []byte {
	buf := make([]byte, 8, 8+36)
	binary.LittleEndian.PutUint64(buf, in.Since)
	return append(buf, in.PreviousOutput.serialize()...)
}

// Script is a lock or type script: code_hash, hash_type, args.
type Script struct {
	CodeHash chainhash.Hash
	HashType byte
	Args     []byte
}

func (s Script) serialize() []byte {
	return serializeTable(
		s.CodeHash[:],
		[]byte{s.HashType},
		serializeBytes(s.Args),
	)
}

// CellOutput is capacity, an optional type script, and a lock script.
type CellOutput struct {
	Capacity uint64
	Type     *Script
	Lock     Script
}

func (c CellOutput) serialize() []byte {
	capacity := make([]byte, 8)
	binary.LittleEndian.PutUint64(capacity, c.Capacity)

	var typeField []byte
	if c.Type != nil {
		typeField = c.Type.serialize()
	}

	return serializeTable(capacity, typeField, c.Lock.serialize())
}

// WitnessArgs is lock, input_type, output_type, each an optional Bytes.
type WitnessArgs struct {
	Lock       []byte
	HasLock    bool
	InputType  []byte
	HasInput   bool
	OutputType []byte
	HasOutput  bool
}

// Serialize molecule-encodes a WitnessArgs table. Exported: callers build
// a witness's raw bytes this way before handing them to a Sim.
func (w WitnessArgs) Serialize() []byte {
	lock := bytesOptField(w.Lock, w.HasLock)
	inputType := bytesOptField(w.InputType, w.HasInput)
	outputType := bytesOptField(w.OutputType, w.HasOutput)
	return serializeTable(lock, inputType, outputType)
}

func bytesOptField(b []byte, has bool) []byte {
	if !has {
		return nil
	}
	return serializeBytes(b)
}

// serializeBytes molecule-encodes a Bytes value: 4-byte LE length prefix
// followed by the payload.
func serializeBytes(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(b)))
	copy(out[4:], b)
	return out
}

// serializeTable molecule-encodes a table from its already-serialized
// field byte strings: a 4-byte LE full_size, one 4-byte LE offset per
// field, then the fields packed back to back.
func serializeTable(fields ...[]byte) []byte {
	headerSize := 4 + 4*len(fields)
	fullSize := headerSize
	for _, f := range fields {
		fullSize += len(f)
	}

	out := make([]byte, fullSize)
	binary.LittleEndian.PutUint32(out[:4], uint32(fullSize))

	offset := headerSize
	for i, f := range fields {
		binary.LittleEndian.PutUint32(out[4+4*i:8+4*i], uint32(offset))
		copy(out[offset:], f)
		offset += len(f)
	}
	return out
}

// Transaction is a fully assembled fixture: a committed hash plus the
// inputs/outputs/witnesses sighashlock's coverage ops and finalizer read.
//
// InputCells/InputsData model the previous outputs an input's OutPoint
// names (what a real LoadCell against Source=Input actually returns);
// this fixture builder skips modelling the separate transactions that
// would have created them and lets the caller supply that content
// directly, indexed in parallel with Inputs.
type Transaction struct {
	Hash        chainhash.Hash
	Inputs      []CellInput
	InputCells  []CellOutput
	InputsData  [][]byte
	Outputs     []CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte // each already WitnessArgs.Serialize()'d
}
