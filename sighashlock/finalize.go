package sighashlock

import "encoding/binary"

const signatureSize = 65

// lockPayloadRange locates the absolute byte range, within a raw
// WitnessArgs table, of the Lock field's Bytes payload (i.e. with the
// field's own 4-byte inner length prefix already skipped). It returns
// ok=false if the witness has no lock field at all (§7: ENCODING).
func lockPayloadRange(raw []byte) (start, end int, ok bool, err error) {
	fullSize, offsets, err := tableOffsets(raw, 3)
	if err != nil {
		return 0, 0, false, err
	}
	lockField := tableField(raw, offsets, fullSize, 0)
	if len(lockField) == 0 {
		return 0, 0, false, nil
	}
	if len(lockField) < 4 {
		return 0, 0, false, fail(CodeEncoding, "witness_args.lock: Bytes needs a 4-byte length prefix")
	}
	n := binary.LittleEndian.Uint32(lockField[:4])
	if int(n) != len(lockField)-4 {
		return 0, 0, false, fail(CodeEncoding, "witness_args.lock: declares length %d, have %d", n, len(lockField)-4)
	}
	fieldStart := offsets[0]
	return fieldStart + 4, fieldStart + len(lockField), true, nil
}

// finalizeWitnesses implements the witness finalization rule: it
// zeroes the current group's first witness's lock signature field, then
// absorbs that witness, the rest of the group's witnesses, and the
// transaction-global witness tail beyond the input count, each prefixed
// with its 8-byte length. It returns the final 32-byte digest.
func finalizeWitnesses(host HostAdapter, h *hasher) ([DigestSize]byte, error) {
	var digest [DigestSize]byte

	first := make([]byte, WitnessBufSize)
	n, err := host.LoadWitness(0, SourceGroupInput, first)
	if err != nil {
		return digest, propagateHostError(err)
	}
	if n > len(first) {
		return digest, fail(CodeWitnessSize, "group witness 0 exceeds %d bytes", len(first))
	}
	raw := first[:n]

	start, end, ok, err := lockPayloadRange(raw)
	if err != nil {
		return digest, err
	}
	if !ok {
		return digest, fail(CodeEncoding, "witness_args: missing lock field")
	}
	if end-start < signatureSize {
		return digest, fail(CodeArgumentsLen, "witness_args.lock: %d bytes, shorter than a signature", end-start)
	}
	for i := end - signatureSize; i < end; i++ {
		raw[i] = 0
	}

	absorbLengthPrefixed(h, raw)

	for idx := 1; ; idx++ {
		buf := make([]byte, WitnessBufSize)
		n, err := host.LoadWitness(idx, SourceGroupInput, buf)
		if err == ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return digest, propagateHostError(err)
		}
		if n > len(buf) {
			return digest, fail(CodeWitnessSize, "group witness %d exceeds %d bytes", idx, len(buf))
		}
		absorbLengthPrefixed(h, buf[:n])
	}

	inputsLen, err := host.CalculateInputsLen()
	if err != nil {
		return digest, propagateHostError(err)
	}

	for idx := inputsLen; ; idx++ {
		buf := make([]byte, WitnessBufSize)
		n, err := host.LoadWitness(int(idx), SourceInput, buf)
		if err == ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return digest, propagateHostError(err)
		}
		if n > len(buf) {
			return digest, fail(CodeWitnessSize, "orphan witness %d exceeds %d bytes", idx, len(buf))
		}
		absorbLengthPrefixed(h, buf[:n])
	}

	return h.finalize(), nil
}

// absorbLengthPrefixed absorbs an 8-byte little-endian length prefix
// ahead of payload, per §4.5's witness framing.
func absorbLengthPrefixed(h *hasher, payload []byte) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	h.absorb(lenBuf[:])
	h.absorb(payload)
}
