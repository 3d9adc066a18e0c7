package simhost

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// JSON fixture format for a Transaction, read by the sighashverify CLI's
// verify/digest/batch-verify subcommands. Byte fields are 0x-prefixed
// hex strings; a script group's executing lock script is not listed
// separately, since it is always the lock script of the group's first
// member input — exactly how the VM assembles a script group in the
// first place.

type jsonScript struct {
	CodeHash string `json:"code_hash"`
	HashType byte   `json:"hash_type"`
	Args     string `json:"args"`
}

type jsonOutPoint struct {
	TxHash string `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

type jsonCellInput struct {
	Since          uint64       `json:"since"`
	PreviousOutput jsonOutPoint `json:"previous_output"`
}

type jsonCellOutput struct {
	Capacity uint64      `json:"capacity"`
	Type     *jsonScript `json:"type,omitempty"`
	Lock     jsonScript  `json:"lock"`
	Data     string      `json:"data,omitempty"`
}

type jsonWitness struct {
	Lock       *string `json:"lock,omitempty"`
	InputType  *string `json:"input_type,omitempty"`
	OutputType *string `json:"output_type,omitempty"`
}

type jsonTransaction struct {
	Hash        string           `json:"hash"`
	Inputs      []jsonCellInput  `json:"inputs"`
	InputCells  []jsonCellOutput `json:"input_cells"`
	Outputs     []jsonCellOutput `json:"outputs"`
	OutputsData []string         `json:"outputs_data"`
	Witnesses   []jsonWitness    `json:"witnesses"`
}

// ParseTransaction decodes a fixture Transaction from JSON.
func ParseTransaction(data []byte) (*Transaction, error) {
	var jt jsonTransaction
	if err := json.Unmarshal(data, &jt); err != nil {
		return nil, fmt.Errorf("simhost: decode transaction json: %w", err)
	}

	hash, err := parseHash(jt.Hash)
	if err != nil {
		return nil, fmt.Errorf("simhost: hash: %w", err)
	}

	tx := &Transaction{Hash: hash}

	for i, in := range jt.Inputs {
		ci, err := parseCellInput(in)
		if err != nil {
			return nil, fmt.Errorf("simhost: inputs[%d]: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, ci)
	}

	for i, c := range jt.InputCells {
		co, err := parseCellOutput(c)
		if err != nil {
			return nil, fmt.Errorf("simhost: input_cells[%d]: %w", i, err)
		}
		tx.InputCells = append(tx.InputCells, co)

		data, err := parseHex(c.Data)
		if err != nil {
			return nil, fmt.Errorf("simhost: input_cells[%d].data: %w", i, err)
		}
		tx.InputsData = append(tx.InputsData, data)
	}

	for i, c := range jt.Outputs {
		co, err := parseCellOutput(c)
		if err != nil {
			return nil, fmt.Errorf("simhost: outputs[%d]: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, co)
	}

	for i, d := range jt.OutputsData {
		data, err := parseHex(d)
		if err != nil {
			return nil, fmt.Errorf("simhost: outputs_data[%d]: %w", i, err)
		}
		tx.OutputsData = append(tx.OutputsData, data)
	}

	for i, w := range jt.Witnesses {
		wa, err := parseWitnessArgs(w)
		if err != nil {
			return nil, fmt.Errorf("simhost: witnesses[%d]: %w", i, err)
		}
		tx.Witnesses = append(tx.Witnesses, wa.Serialize())
	}

	return tx, nil
}

func parseWitnessArgs(w jsonWitness) (WitnessArgs, error) {
	var wa WitnessArgs
	var err error
	if w.Lock != nil {
		wa.Lock, err = parseHex(*w.Lock)
		if err != nil {
			return wa, err
		}
		wa.HasLock = true
	}
	if w.InputType != nil {
		wa.InputType, err = parseHex(*w.InputType)
		if err != nil {
			return wa, err
		}
		wa.HasInput = true
	}
	if w.OutputType != nil {
		wa.OutputType, err = parseHex(*w.OutputType)
		if err != nil {
			return wa, err
		}
		wa.HasOutput = true
	}
	return wa, nil
}

func parseCellInput(in jsonCellInput) (CellInput, error) {
	txHash, err := parseHash(in.PreviousOutput.TxHash)
	if err != nil {
		return CellInput{}, fmt.Errorf("previous_output.tx_hash: %w", err)
	}
	return CellInput{
		Since: in.Since,
		PreviousOutput: OutPoint{
			TxHash: txHash,
			Index:  in.PreviousOutput.Index,
		},
	}, nil
}

func parseCellOutput(c jsonCellOutput) (CellOutput, error) {
	lock, err := parseScript(c.Lock)
	if err != nil {
		return CellOutput{}, fmt.Errorf("lock: %w", err)
	}

	out := CellOutput{Capacity: c.Capacity, Lock: lock}
	if c.Type != nil {
		typeScript, err := parseScript(*c.Type)
		if err != nil {
			return CellOutput{}, fmt.Errorf("type: %w", err)
		}
		out.Type = &typeScript
	}
	return out, nil
}

func parseScript(s jsonScript) (Script, error) {
	codeHash, err := parseHash(s.CodeHash)
	if err != nil {
		return Script{}, fmt.Errorf("code_hash: %w", err)
	}
	args, err := parseHex(s.Args)
	if err != nil {
		return Script{}, fmt.Errorf("args: %w", err)
	}
	return Script{CodeHash: codeHash, HashType: s.HashType, Args: args}, nil
}

func parseHash(s string) (chainhash.Hash, error) {
	var h chainhash.Hash
	b, err := parseHex(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("need %d bytes, have %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func parseHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}
