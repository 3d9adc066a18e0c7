package simhost_test

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ckb-open-tx/sighashlock"
	"github.com/ckb-open-tx/sighashlock/simhost"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

// testKey derives a deterministic private key and the lock Args a real
// signer would need (the BLAKE2b-160 hash of its compressed pubkey), from
// a one-byte seed so every test can ask for "a key" without sharing
// mutable state.
func testKey(t *testing.T, seed byte) (*secp256k1.PrivateKey, sighashlock.Args) {
	t.Helper()

	var sk [32]byte
	for i := range sk {
		sk[i] = seed
	}
	priv := secp256k1.PrivKeyFromBytes(sk[:])

	compressed := priv.PubKey().SerializeCompressed()
	sum := blake2b.Sum256(compressed)

	var args sighashlock.Args
	copy(args[:], sum[:sighashlock.ArgsSize])
	return priv, args
}

func fillHash(seed byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = seed
	}
	return h
}

// coverageOp molecule-encodes one 3-byte tagged coverage instruction.
func coverageOp(label, mask byte, index int) []byte {
	return []byte{
		(label << 4) | byte(index>>8),
		byte(index),
		mask,
	}
}

var endOfList = coverageOp(0xF, 0, 0)

// newFixture builds a Transaction with numInputs group-member inputs
// (all locked by the same script) and numOutputs outputs, a fixed
// committed hash, and an empty witness for every input. Callers fill in
// witness 0's Lock field (the coverage array plus signature) afterward.
func newFixture(args sighashlock.Args, numInputs, numOutputs int) (*simhost.Transaction, simhost.Script) {
	lock := simhost.Script{CodeHash: fillHash(0x01), HashType: 0, Args: args[:]}

	tx := &simhost.Transaction{Hash: fillHash(0xEE)}
	for i := 0; i < numInputs; i++ {
		tx.Inputs = append(tx.Inputs, simhost.CellInput{
			Since: uint64(i),
			PreviousOutput: simhost.OutPoint{
				TxHash: fillHash(byte(0x10 + i)),
				Index:  uint32(i),
			},
		})
		tx.InputCells = append(tx.InputCells, simhost.CellOutput{
			Capacity: 1000 + uint64(i),
			Lock:     lock,
		})
		tx.InputsData = append(tx.InputsData, []byte{})
		tx.Witnesses = append(tx.Witnesses, (simhost.WitnessArgs{}).Serialize())
	}
	for i := 0; i < numOutputs; i++ {
		tx.Outputs = append(tx.Outputs, simhost.CellOutput{
			Capacity: 2000 + uint64(i),
			Lock:     lock,
		})
		tx.OutputsData = append(tx.OutputsData, []byte{})
	}
	return tx, lock
}

// signGroup builds a valid, signed witness 0 for sim's script group from
// a coverage array (not yet including the terminator's 65-byte
// signature tail) and writes it back into tx.Witnesses at the group's
// first member position.
func signGroup(t *testing.T, sim *simhost.Sim, priv *secp256k1.PrivateKey, coverage []byte) {
	t.Helper()

	placeholder := simhost.WitnessArgs{Lock: simhost.BuildLockBytes(coverage), HasLock: true}
	pos := sim.GroupInputIndices[0]
	sim.Tx.Witnesses[pos] = placeholder.Serialize()

	signed, err := simhost.SignWitness(sim, priv, coverage, placeholder)
	require.NoError(t, err, "sign witness")
	sim.Tx.Witnesses[pos] = signed.Serialize()
}
