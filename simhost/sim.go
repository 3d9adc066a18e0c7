package simhost

import (
	"encoding/binary"

	"github.com/ckb-open-tx/sighashlock"
)

// Sim implements sighashlock.HostAdapter over an in-memory Transaction,
// for a single script group. GroupInputIndices names the group's inputs,
// in ascending order, exactly as a real script group would be assembled
// by the VM from the transaction's lock scripts.
type Sim struct {
	Tx                *Transaction
	Script            Script
	GroupInputIndices []int
}

// New builds a Sim over tx, executing as script with the given group
// input indices (ascending, positions into tx.Inputs).
func New(tx *Transaction, script Script, groupInputIndices []int) *Sim {
	return &Sim{Tx: tx, Script: script, GroupInputIndices: groupInputIndices}
}

func (s *Sim) LoadTxHash(buf []byte) (int, error) {
	return copyFull(buf, s.Tx.Hash[:])
}

func (s *Sim) LoadScript(buf []byte) (int, error) {
	return copyFull(buf, s.Script.serialize())
}

func (s *Sim) LoadWitness(index int, source sighashlock.Source, buf []byte) (int, error) {
	switch source {
	case sighashlock.SourceGroupInput:
		if index < 0 || index >= len(s.GroupInputIndices) {
			return 0, sighashlock.ErrIndexOutOfBound
		}
		pos := s.GroupInputIndices[index]
		return copyFull(buf, s.Tx.Witnesses[pos])
	case sighashlock.SourceInput:
		if index < 0 || index >= len(s.Tx.Witnesses) {
			return 0, sighashlock.ErrIndexOutOfBound
		}
		return copyFull(buf, s.Tx.Witnesses[index])
	default:
		return 0, sighashlock.ErrIndexOutOfBound
	}
}

func (s *Sim) LoadCell(index int, source sighashlock.Source, offset int, buf []byte) (int, error) {
	cell, _, ok := s.resolveCell(index, source)
	if !ok {
		return 0, sighashlock.ErrIndexOutOfBound
	}
	return windowedCopy(buf, offset, cell.serialize())
}

func (s *Sim) LoadCellData(index int, source sighashlock.Source, offset int, buf []byte) (int, error) {
	_, data, ok := s.resolveCell(index, source)
	if !ok {
		return 0, sighashlock.ErrIndexOutOfBound
	}
	return windowedCopy(buf, offset, data)
}

func (s *Sim) LoadCellByField(index int, source sighashlock.Source, field sighashlock.CellField, buf []byte) (int, error) {
	cell, _, ok := s.resolveCell(index, source)
	if !ok {
		return 0, sighashlock.ErrIndexOutOfBound
	}

	switch field {
	case sighashlock.FieldCapacity:
		var capacity [8]byte
		binary.LittleEndian.PutUint64(capacity[:], cell.Capacity)
		return copyFull(buf, capacity[:])
	case sighashlock.FieldType:
		if cell.Type == nil {
			return copyFull(buf, nil)
		}
		return copyFull(buf, cell.Type.serialize())
	case sighashlock.FieldLock:
		return copyFull(buf, cell.Lock.serialize())
	default:
		return 0, sighashlock.ErrIndexOutOfBound
	}
}

func (s *Sim) LoadInput(index int, source sighashlock.Source, offset int, buf []byte) (int, error) {
	in, ok := s.resolveInput(index, source)
	if !ok {
		return 0, sighashlock.ErrIndexOutOfBound
	}
	return windowedCopy(buf, offset, in.serialize())
}

func (s *Sim) LoadInputByField(index int, source sighashlock.Source, field sighashlock.CellField, buf []byte) (int, error) {
	in, ok := s.resolveInput(index, source)
	if !ok {
		return 0, sighashlock.ErrIndexOutOfBound
	}

	switch field {
	case sighashlock.FieldSince:
		var since [8]byte
		binary.LittleEndian.PutUint64(since[:], in.Since)
		return copyFull(buf, since[:])
	case sighashlock.FieldOutPoint:
		return copyFull(buf, in.PreviousOutput.serialize())
	default:
		return 0, sighashlock.ErrIndexOutOfBound
	}
}

func (s *Sim) CalculateInputsLen() (uint64, error) {
	return uint64(len(s.Tx.Inputs)), nil
}

// resolveCell maps (index, source) to the CellOutput and its associated
// data a real LoadCell/LoadCellData/LoadCellByField call would see:
// Source=Output indexes the transaction's own outputs, Source=Input and
// Source=GroupInput index the previous outputs the named inputs spend.
func (s *Sim) resolveCell(index int, source sighashlock.Source) (*CellOutput, []byte, bool) {
	switch source {
	case sighashlock.SourceOutput:
		if index < 0 || index >= len(s.Tx.Outputs) {
			return nil, nil, false
		}
		return &s.Tx.Outputs[index], s.Tx.OutputsData[index], true
	case sighashlock.SourceInput:
		if index < 0 || index >= len(s.Tx.InputCells) {
			return nil, nil, false
		}
		return &s.Tx.InputCells[index], s.Tx.InputsData[index], true
	case sighashlock.SourceGroupInput:
		if index < 0 || index >= len(s.GroupInputIndices) {
			return nil, nil, false
		}
		pos := s.GroupInputIndices[index]
		return &s.Tx.InputCells[pos], s.Tx.InputsData[pos], true
	default:
		return nil, nil, false
	}
}

// resolveInput maps (index, source) to the CellInput struct itself
// (since + previous_output), for Source=Input/GroupInput only.
func (s *Sim) resolveInput(index int, source sighashlock.Source) (*CellInput, bool) {
	switch source {
	case sighashlock.SourceInput:
		if index < 0 || index >= len(s.Tx.Inputs) {
			return nil, false
		}
		return &s.Tx.Inputs[index], true
	case sighashlock.SourceGroupInput:
		if index < 0 || index >= len(s.GroupInputIndices) {
			return nil, false
		}
		pos := s.GroupInputIndices[index]
		return &s.Tx.Inputs[pos], true
	default:
		return nil, false
	}
}

// copyFull copies all of full into buf (as much as fits) and reports
// full's true length, exactly like an unwindowed host syscall.
func copyFull(buf, full []byte) (int, error) {
	return windowedCopy(buf, 0, full)
}

// windowedCopy copies full[offset:] into buf (as much as fits) and
// reports full's true total length, exactly like the positioned
// load_cell/load_input/load_witness syscalls this models.
func windowedCopy(buf []byte, offset int, full []byte) (int, error) {
	if offset < 0 {
		offset = 0
	}
	if offset < len(full) {
		copy(buf, full[offset:])
	}
	return len(full), nil
}
