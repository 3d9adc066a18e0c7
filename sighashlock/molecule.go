package sighashlock

import "encoding/binary"

// Safe accessors for the molecule-encoded structures this package reads
// off the wire: Bytes, BytesOpt, Script, OutPoint, WitnessArgs. Every
// reader validates structural soundness (declared size matches the slice,
// offsets are in range and non-decreasing) before any field is extracted,
// the invariant that no structure may be partially read.
//
// Molecule's "table" layout is: a 4-byte little-endian full_size, followed
// by one 4-byte little-endian offset per field (each relative to the start
// of the table), followed by the field payloads back to back. A field's
// length is the distance to the next field's offset, or to full_size for
// the last field. "struct" types (OutPoint, the since+outpoint pair inside
// CellInput) have no offset table: every field is fixed-size and packed
// directly.

const byte32Size = 32

// readU32LE reads a 4-byte little-endian uint32 at off, failing with
// CodeEncoding if it doesn't fit in buf.
func readU32LE(buf []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(buf) {
		return 0, fail(CodeEncoding, "molecule: u32 read out of bounds at %d (len %d)", off, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[off : off+4]), nil
}

// tableOffsets validates and returns a table's declared full size and its
// per-field byte offsets, without yet slicing out any field.
func tableOffsets(buf []byte, fieldCount int) (fullSize int, offsets []int, err error) {
	headerSize := 4 + 4*fieldCount
	if len(buf) < headerSize {
		return 0, nil, fail(CodeEncoding, "molecule: table header needs %d bytes, have %d", headerSize, len(buf))
	}

	size, err := readU32LE(buf, 0)
	if err != nil {
		return 0, nil, err
	}
	fullSize = int(size)
	if fullSize != len(buf) {
		return 0, nil, fail(CodeEncoding, "molecule: table declares size %d, slice is %d bytes", fullSize, len(buf))
	}

	offsets = make([]int, fieldCount)
	for i := 0; i < fieldCount; i++ {
		off, err := readU32LE(buf, 4+4*i)
		if err != nil {
			return 0, nil, err
		}
		offsets[i] = int(off)
		if offsets[i] < headerSize || offsets[i] > fullSize {
			return 0, nil, fail(CodeEncoding, "molecule: field %d offset %d out of range [%d,%d]", i, offsets[i], headerSize, fullSize)
		}
		if i > 0 && offsets[i] < offsets[i-1] {
			return 0, nil, fail(CodeEncoding, "molecule: field offsets not non-decreasing at %d", i)
		}
	}
	return fullSize, offsets, nil
}

// tableField slices out field i of a table whose offsets/fullSize were
// already validated by tableOffsets.
func tableField(buf []byte, offsets []int, fullSize, i int) []byte {
	start := offsets[i]
	end := fullSize
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	return buf[start:end]
}

// ReadBytes parses a molecule Bytes value: a 4-byte little-endian length
// prefix followed by that many bytes, with nothing left over.
func ReadBytes(buf []byte) ([]byte, error) {
	if len(buf) < 4 {
		return nil, fail(CodeEncoding, "molecule: Bytes needs a 4-byte length prefix, have %d", len(buf))
	}
	n, err := readU32LE(buf, 0)
	if err != nil {
		return nil, err
	}
	if int(n) != len(buf)-4 {
		return nil, fail(CodeEncoding, "molecule: Bytes declares length %d, have %d", n, len(buf)-4)
	}
	return buf[4:], nil
}

// ReadBytesOpt parses a molecule BytesOpt value: an empty slice means
// None; anything else is parsed as Bytes. Returns (nil, false, nil) for
// None.
func ReadBytesOpt(buf []byte) ([]byte, bool, error) {
	if len(buf) == 0 {
		return nil, false, nil
	}
	b, err := ReadBytes(buf)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// OutPoint is the molecule OutPoint struct: a fixed-size 36-byte
// (tx_hash ‖ index) pair naming a previous cell.
type OutPoint struct {
	TxHash [byte32Size]byte
	Index  uint32
}

const outPointSize = byte32Size + 4

// ReadOutPoint parses a molecule OutPoint struct (fixed 36 bytes, no
// offset table).
func ReadOutPoint(buf []byte) (OutPoint, error) {
	var op OutPoint
	if len(buf) != outPointSize {
		return op, fail(CodeEncoding, "molecule: OutPoint needs exactly %d bytes, have %d", outPointSize, len(buf))
	}
	copy(op.TxHash[:], buf[:byte32Size])
	op.Index = binary.LittleEndian.Uint32(buf[byte32Size:outPointSize])
	return op, nil
}

// Script is the molecule Script table: code_hash (Byte32), hash_type
// (byte), args (Bytes).
type Script struct {
	CodeHash [byte32Size]byte
	HashType byte
	Args     []byte
}

// ReadScript parses a molecule Script table (3 fields).
func ReadScript(buf []byte) (Script, error) {
	var s Script
	fullSize, offsets, err := tableOffsets(buf, 3)
	if err != nil {
		return s, err
	}

	codeHash := tableField(buf, offsets, fullSize, 0)
	if len(codeHash) != byte32Size {
		return s, fail(CodeEncoding, "molecule: Script.code_hash needs %d bytes, have %d", byte32Size, len(codeHash))
	}
	copy(s.CodeHash[:], codeHash)

	hashType := tableField(buf, offsets, fullSize, 1)
	if len(hashType) != 1 {
		return s, fail(CodeEncoding, "molecule: Script.hash_type needs 1 byte, have %d", len(hashType))
	}
	s.HashType = hashType[0]

	args, err := ReadBytes(tableField(buf, offsets, fullSize, 2))
	if err != nil {
		return s, err
	}
	s.Args = args
	return s, nil
}

// WitnessArgs is the molecule WitnessArgs table: lock, input_type,
// output_type, each an optional Bytes (BytesOpt).
type WitnessArgs struct {
	Lock       []byte
	HasLock    bool
	InputType  []byte
	HasInput   bool
	OutputType []byte
	HasOutput  bool
}

// ReadWitnessArgs parses a molecule WitnessArgs table (3 optional
// fields).
func ReadWitnessArgs(buf []byte) (WitnessArgs, error) {
	var wa WitnessArgs
	fullSize, offsets, err := tableOffsets(buf, 3)
	if err != nil {
		return wa, err
	}

	lock, hasLock, err := ReadBytesOpt(tableField(buf, offsets, fullSize, 0))
	if err != nil {
		return wa, err
	}
	wa.Lock, wa.HasLock = lock, hasLock

	inputType, hasInput, err := ReadBytesOpt(tableField(buf, offsets, fullSize, 1))
	if err != nil {
		return wa, err
	}
	wa.InputType, wa.HasInput = inputType, hasInput

	outputType, hasOutput, err := ReadBytesOpt(tableField(buf, offsets, fullSize, 2))
	if err != nil {
		return wa, err
	}
	wa.OutputType, wa.HasOutput = outputType, hasOutput

	return wa, nil
}
