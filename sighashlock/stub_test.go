package sighashlock

import "encoding/binary"

// stubHost is a minimal, hand-built HostAdapter double for this
// package's own white-box tests: each load method looks an object up by
// (source, index) in a plain map and reports ErrIndexOutOfBound when
// it's absent, exactly like a real host would for a nonexistent cell or
// input. It supports the windowed offset reads absorbObject performs by
// slicing the stored object directly.
type stubHost struct {
	txHash      []byte
	script      []byte
	witnesses   map[Source]map[int][]byte
	cells       map[Source]map[int][]byte
	cellData    map[Source]map[int][]byte
	cellFields  map[Source]map[int]map[CellField][]byte
	inputs      map[Source]map[int][]byte
	inputFields map[Source]map[int]map[CellField][]byte
	inputsLen   uint64
}

func newStubHost() *stubHost {
	return &stubHost{
		witnesses:   map[Source]map[int][]byte{},
		cells:       map[Source]map[int][]byte{},
		cellData:    map[Source]map[int][]byte{},
		cellFields:  map[Source]map[int]map[CellField][]byte{},
		inputs:      map[Source]map[int][]byte{},
		inputFields: map[Source]map[int]map[CellField][]byte{},
	}
}

func (h *stubHost) LoadTxHash(buf []byte) (int, error) {
	return windowCopy(buf, 0, h.txHash), nil
}

func (h *stubHost) LoadScript(buf []byte) (int, error) {
	return windowCopy(buf, 0, h.script), nil
}

func (h *stubHost) LoadWitness(index int, source Source, buf []byte) (int, error) {
	b, ok := h.witnesses[source][index]
	if !ok {
		return 0, ErrIndexOutOfBound
	}
	return windowCopy(buf, 0, b), nil
}

func (h *stubHost) LoadCell(index int, source Source, offset int, buf []byte) (int, error) {
	b, ok := h.cells[source][index]
	if !ok {
		return 0, ErrIndexOutOfBound
	}
	return windowCopy(buf, offset, b), nil
}

func (h *stubHost) LoadCellData(index int, source Source, offset int, buf []byte) (int, error) {
	b, ok := h.cellData[source][index]
	if !ok {
		return 0, ErrIndexOutOfBound
	}
	return windowCopy(buf, offset, b), nil
}

func (h *stubHost) LoadCellByField(index int, source Source, field CellField, buf []byte) (int, error) {
	byIndex, ok := h.cellFields[source][index]
	if !ok {
		return 0, ErrIndexOutOfBound
	}
	return windowCopy(buf, 0, byIndex[field]), nil
}

func (h *stubHost) LoadInput(index int, source Source, offset int, buf []byte) (int, error) {
	b, ok := h.inputs[source][index]
	if !ok {
		return 0, ErrIndexOutOfBound
	}
	return windowCopy(buf, offset, b), nil
}

func (h *stubHost) LoadInputByField(index int, source Source, field CellField, buf []byte) (int, error) {
	byIndex, ok := h.inputFields[source][index]
	if !ok {
		return 0, ErrIndexOutOfBound
	}
	return windowCopy(buf, 0, byIndex[field]), nil
}

func (h *stubHost) CalculateInputsLen() (uint64, error) {
	return h.inputsLen, nil
}

func windowCopy(buf []byte, offset int, full []byte) int {
	if offset >= 0 && offset < len(full) {
		copy(buf, full[offset:])
	}
	return len(full)
}

// --- small encoders the tests build fixture bytes with ---

func encodeScript(codeHash [32]byte, hashType byte, args []byte) []byte {
	return encodeTable(codeHash[:], []byte{hashType}, encodeBytes(args))
}

func encodeBytes(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(out, uint32(len(b)))
	copy(out[4:], b)
	return out
}

func encodeTable(fields ...[]byte) []byte {
	header := 4 + 4*len(fields)
	full := header
	for _, f := range fields {
		full += len(f)
	}
	out := make([]byte, full)
	binary.LittleEndian.PutUint32(out[:4], uint32(full))
	off := header
	for i, f := range fields {
		binary.LittleEndian.PutUint32(out[4+4*i:8+4*i], uint32(off))
		copy(out[off:], f)
		off += len(f)
	}
	return out
}

func encodeOutPoint(txHash [32]byte, index uint32) []byte {
	out := make([]byte, 36)
	copy(out[:32], txHash[:])
	binary.LittleEndian.PutUint32(out[32:], index)
	return out
}

func encodeCellInput(since uint64, op []byte) []byte {
	out := make([]byte, 8, 8+len(op))
	binary.LittleEndian.PutUint64(out, since)
	return append(out, op...)
}

func encodeCellOutput(capacity uint64, typeScript, lockScript []byte) []byte {
	cap8 := make([]byte, 8)
	binary.LittleEndian.PutUint64(cap8, capacity)
	return encodeTable(cap8, typeScript, lockScript)
}

func encodeWitnessArgs(lock []byte, hasLock bool) []byte {
	var lockField []byte
	if hasLock {
		lockField = encodeBytes(lock)
	}
	return encodeTable(lockField, nil, nil)
}

func encodeCoverageOp(label Label, index int, mask byte) []byte {
	return []byte{(byte(label) << 4) | byte(index>>8), byte(index), mask}
}
