package sighashlock

import "encoding/binary"

// Label is the 4-bit tag of a CoverageOp.
type Label uint8

const (
	LabelSighashAll     Label = 0x0
	LabelOutput         Label = 0x1
	LabelInputCell      Label = 0x2
	LabelInputCellSince Label = 0x3
	LabelInputOutpoint  Label = 0x4
	LabelEndOfList      Label = 0xF
)

// Cell mask bits, for LabelOutput / LabelInputCell / LabelInputCellSince.
const (
	MaskCapacity     = 0x01
	MaskTypeCodeHash = 0x02
	MaskTypeArgs     = 0x04
	MaskTypeHashType = 0x08
	MaskLockCodeHash = 0x10
	MaskLockArgs     = 0x20
	MaskLockHashType = 0x40
	MaskData         = 0x80
	MaskFullySerial  = 0xFF
)

// Outpoint mask bits, for LabelInputOutpoint.
const (
	MaskOutpointTxHash = 0x01
	MaskOutpointIndex  = 0x02
	MaskOutpointSince  = 0x04
)

// CoverageOp is one 3-byte tagged instruction in a sighash-coverage array
// mask bits.
type CoverageOp struct {
	Label Label
	Index int // 12-bit, 0..4095
	Mask  byte
}

const coverageOpSize = 3

// parseCoverageOp decodes the 3-byte CoverageOp at the start of buf.
func parseCoverageOp(buf []byte) CoverageOp {
	b0, b1, b2 := buf[0], buf[1], buf[2]
	return CoverageOp{
		Label: Label(b0 >> 4),
		Index: (int(b0&0x0F) << 8) | int(b1),
		Mask:  b2,
	}
}

// interpretCoverage runs the coverage-op interpreter: it parses
// LockBytes as a sequence of CoverageOp, terminated by LabelEndOfList, and
// drives h to absorb the transaction components each op selects, in the
// exact order they appear. It returns the number of op-bytes consumed,
// including the terminator.
func interpretCoverage(lockBytes []byte, host HostAdapter, h *hasher) (int, error) {
	i := 0
	for {
		if (i+1)*coverageOpSize > len(lockBytes) {
			return 0, fail(CodeInvalidLabel, "coverage: truncated op at index %d", i)
		}
		op := parseCoverageOp(lockBytes[i*coverageOpSize:])
		i++

		if op.Label == LabelEndOfList {
			return i * coverageOpSize, nil
		}
		if err := applyCoverageOp(op, host, h); err != nil {
			return 0, err
		}
	}
}

func applyCoverageOp(op CoverageOp, host HostAdapter, h *hasher) error {
	switch op.Label {
	case LabelSighashAll:
		return absorbSighashAll(host, h)
	case LabelOutput:
		return absorbCell(op, SourceOutput, host, h, false)
	case LabelInputCell:
		return absorbCell(op, SourceInput, host, h, false)
	case LabelInputCellSince:
		return absorbCell(op, SourceInput, host, h, true)
	case LabelInputOutpoint:
		return absorbInputOutpoint(op, host, h)
	default:
		return fail(CodeInvalidLabel, "coverage: unknown label %#x", op.Label)
	}
}

func absorbSighashAll(host HostAdapter, h *hasher) error {
	var buf [DigestSize]byte
	n, err := host.LoadTxHash(buf[:])
	if err != nil {
		return propagateHostError(err)
	}
	if n != DigestSize {
		return fail(CodeSyscall, "sighash_all: tx hash length %d, want %d", n, DigestSize)
	}
	h.absorb(buf[:])
	return nil
}

// absorbCell implements the OUTPUT / INPUT_CELL / INPUT_CELL_SINCE actions.
func absorbCell(op CoverageOp, src Source, host HostAdapter, h *hasher, withSince bool) error {
	if op.Mask == MaskFullySerial {
		if err := h.absorbObject(func(offset int, buf []byte) (int, error) {
			return host.LoadCell(op.Index, src, offset, buf)
		}); err != nil {
			return propagateHostError(err)
		}
		if err := h.absorbObject(func(offset int, buf []byte) (int, error) {
			return host.LoadCellData(op.Index, src, offset, buf)
		}); err != nil {
			return propagateHostError(err)
		}
	} else {
		if op.Mask&MaskCapacity != 0 {
			var buf [8]byte
			n, err := host.LoadCellByField(op.Index, src, FieldCapacity, buf[:])
			if err != nil {
				return propagateHostError(err)
			}
			if n != 8 {
				return fail(CodeSyscall, "cell.capacity: length %d, want 8", n)
			}
			h.absorb(buf[:])
		}

		if op.Mask&(MaskTypeCodeHash|MaskTypeArgs|MaskTypeHashType) != 0 {
			if err := absorbScriptFields(op, src, host, h, FieldType,
				op.Mask&MaskTypeCodeHash != 0, op.Mask&MaskTypeArgs != 0, op.Mask&MaskTypeHashType != 0); err != nil {
				return err
			}
		}

		if op.Mask&(MaskLockCodeHash|MaskLockArgs|MaskLockHashType) != 0 {
			if err := absorbScriptFields(op, src, host, h, FieldLock,
				op.Mask&MaskLockCodeHash != 0, op.Mask&MaskLockArgs != 0, op.Mask&MaskLockHashType != 0); err != nil {
				return err
			}
		}

		if op.Mask&MaskData != 0 {
			if err := h.absorbObject(func(offset int, buf []byte) (int, error) {
				return host.LoadCellData(op.Index, src, offset, buf)
			}); err != nil {
				return propagateHostError(err)
			}
		}
	}

	if withSince {
		var buf [8]byte
		n, err := host.LoadInputByField(op.Index, SourceInput, FieldSince, buf[:])
		if err != nil {
			return propagateHostError(err)
		}
		if n != 8 {
			return fail(CodeSyscall, "input.since: length %d, want 8", n)
		}
		h.absorb(buf[:])
	}
	return nil
}

// absorbScriptFields loads the type or lock script of the cell named by
// op/src and absorbs its code_hash/args/hash_type subfields in that
// declaration order, per whichever of wantCodeHash/wantArgs/wantHashType
// are set. This is the one helper shared by both script kinds: the
// type-mask bits (0x02/0x04/0x08) and lock-mask bits (0x10/0x20/0x40) are
// the same positional selector, just shifted by 3, so both call through
// here with a normalized field selector (FieldType or FieldLock).
//
// If the cell has no script in that slot (an absent type script), the
// field is simply not absorbed for any of the three subfields: toggling a
// mask bit only changes the digest when the underlying subfield is
// non-empty.
func absorbScriptFields(op CoverageOp, src Source, host HostAdapter, h *hasher, field CellField, wantCodeHash, wantArgs, wantHashType bool) error {
	buf := make([]byte, WitnessBufSize)
	n, err := host.LoadCellByField(op.Index, src, field, buf)
	if err != nil {
		return propagateHostError(err)
	}
	if n > len(buf) {
		return fail(CodeScriptTooLong, "cell script field exceeds %d bytes", len(buf))
	}
	if n == 0 {
		return nil
	}

	script, err := ReadScript(buf[:n])
	if err != nil {
		return err
	}
	if wantCodeHash {
		h.absorb(script.CodeHash[:])
	}
	if wantArgs {
		h.absorb(script.Args)
	}
	if wantHashType {
		h.absorb([]byte{script.HashType})
	}
	return nil
}

// absorbInputOutpoint implements the INPUT_OUTPOINT action.
func absorbInputOutpoint(op CoverageOp, host HostAdapter, h *hasher) error {
	if op.Mask == MaskFullySerial {
		return propagateHostError(h.absorbObject(func(offset int, buf []byte) (int, error) {
			return host.LoadInput(op.Index, SourceInput, offset, buf)
		}))
	}

	if op.Mask&MaskOutpointSince != 0 {
		var buf [8]byte
		n, err := host.LoadInputByField(op.Index, SourceInput, FieldSince, buf[:])
		if err != nil {
			return propagateHostError(err)
		}
		if n != 8 {
			return fail(CodeSyscall, "input.since: length %d, want 8", n)
		}
		h.absorb(buf[:])
	}

	if op.Mask&(MaskOutpointTxHash|MaskOutpointIndex) != 0 {
		var buf [outPointSize]byte
		n, err := host.LoadInputByField(op.Index, SourceInput, FieldOutPoint, buf[:])
		if err != nil {
			return propagateHostError(err)
		}
		if n != outPointSize {
			return fail(CodeSyscall, "input.out_point: length %d, want %d", n, outPointSize)
		}
		outPoint, err := ReadOutPoint(buf[:])
		if err != nil {
			return err
		}

		if op.Mask&MaskOutpointTxHash != 0 {
			h.absorb(outPoint.TxHash[:])
		}
		if op.Mask&MaskOutpointIndex != 0 {
			// absorbs the serialized 4-byte outpoint index here,
			// distinct from the tx_hash absorbed just above.
			var idx [4]byte
			binary.LittleEndian.PutUint32(idx[:], outPoint.Index)
			h.absorb(idx[:])
		}
	}
	return nil
}

// propagateHostError passes a HostAdapter error through unchanged if it's
// already a fatal VerifyError, turns the loop-terminator sentinel misused as
// an explicit reference (§4.1: fatal when it names an index inside a
// CoverageOp) into a SYSCALL failure, and wraps anything else as a SYSCALL
// failure too.
func propagateHostError(err error) error {
	if err == nil {
		return nil
	}
	if err == ErrIndexOutOfBound {
		return fail(CodeSyscall, "coverage op referenced an out-of-bound index")
	}
	return wrap(CodeSyscall, err)
}
