package simhost_test

import (
	"testing"

	"github.com/ckb-open-tx/sighashlock"
	"github.com/ckb-open-tx/sighashlock/simhost"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestScenarioMinimal (S1) covers the degenerate coverage array: nothing
// but the terminator. The anti-replay prefix is the only thing committed
// to, and a bare signature over it still verifies.
func TestScenarioMinimal(t *testing.T) {
	_, args := testKey(t, 0x01)
	tx, lock := newFixture(args, 1, 0)
	sim := simhost.New(tx, lock, []int{0})
	priv, _ := testKey(t, 0x01)

	signGroup(t, sim, priv, endOfList)

	code, err := sighashlock.Verify(sim)
	require.NoError(t, err, "verify minimal coverage")
	require.Equal(t, sighashlock.CodeOK, code)
}

// TestScenarioSighashAll (S2) covers the common case: SIGHASH_ALL plus
// terminator. A transaction hash change after signing must invalidate it.
func TestScenarioSighashAll(t *testing.T) {
	priv, args := testKey(t, 0x02)
	tx, lock := newFixture(args, 1, 1)
	sim := simhost.New(tx, lock, []int{0})

	coverage := append(coverageOp(byte(sighashlock.LabelSighashAll), 0, 0), endOfList...)
	signGroup(t, sim, priv, coverage)

	code, err := sighashlock.Verify(sim)
	require.NoError(t, err, "verify sighash_all")
	require.Equal(t, sighashlock.CodeOK, code)

	tampered := fillHash(0xD0)
	sim.Tx.Hash = tampered
	code, err = sighashlock.Verify(sim)
	require.Error(t, err, "a changed tx hash must invalidate a SIGHASH_ALL signature")
	require.Equal(t, sighashlock.CodePubkeyBlake160Hash, code)
}

// TestScenarioOpenExtension (S3) covers the defining open-transaction
// property: a third party appending inputs/outputs the coverage array
// never names must not invalidate an existing signature.
func TestScenarioOpenExtension(t *testing.T) {
	priv, args := testKey(t, 0x03)
	tx, lock := newFixture(args, 1, 1)
	sim := simhost.New(tx, lock, []int{0})

	// Covers only output 0's capacity, nothing else.
	coverage := append(coverageOp(byte(sighashlock.LabelOutput), sighashlock.MaskCapacity, 0), endOfList...)
	signGroup(t, sim, priv, coverage)

	code, err := sighashlock.Verify(sim)
	require.NoError(t, err, "verify before extension")
	require.Equal(t, sighashlock.CodeOK, code)

	// A third party appends an unrelated output and an unrelated input the
	// coverage array never names, after the signature was produced.
	tx.Outputs = append(tx.Outputs, simhost.CellOutput{Capacity: 9999, Lock: lock})
	tx.OutputsData = append(tx.OutputsData, []byte{})
	tx.Inputs = append(tx.Inputs, simhost.CellInput{Since: 0, PreviousOutput: simhost.OutPoint{TxHash: fillHash(0x77), Index: 0}})
	tx.InputCells = append(tx.InputCells, simhost.CellOutput{Capacity: 5000, Lock: lock})
	tx.InputsData = append(tx.InputsData, []byte{})

	code, err = sighashlock.Verify(sim)
	require.NoError(t, err, "appending an uncovered output and input must not break the signature")
	require.Equal(t, sighashlock.CodeOK, code)
}

// TestScenarioExtensionForbidden (S4) is the mirror of S3: modifying a
// component the coverage array does name must break the signature.
func TestScenarioExtensionForbidden(t *testing.T) {
	priv, args := testKey(t, 0x04)
	tx, lock := newFixture(args, 1, 1)
	sim := simhost.New(tx, lock, []int{0})

	coverage := append(coverageOp(byte(sighashlock.LabelOutput), sighashlock.MaskCapacity, 0), endOfList...)
	signGroup(t, sim, priv, coverage)

	code, err := sighashlock.Verify(sim)
	require.NoError(t, err, "verify before tamper")
	require.Equal(t, sighashlock.CodeOK, code)

	tx.Outputs[0].Capacity = 123456

	code, err = sighashlock.Verify(sim)
	require.Error(t, err, "modifying a covered output must break the signature")
	require.Equal(t, sighashlock.CodePubkeyBlake160Hash, code)
}

// TestScenarioBadLabel (S5) covers a coverage array with an unrecognized
// label: verification must fail INVALID_LABEL before any signature check.
func TestScenarioBadLabel(t *testing.T) {
	_, args := testKey(t, 0x05)
	tx, lock := newFixture(args, 1, 0)
	sim := simhost.New(tx, lock, []int{0})

	badOp := []byte{0x70, 0x00, 0x00} // label 0x7, unassigned
	lockBytes := simhost.BuildLockBytes(badOp)
	sim.Tx.Witnesses[0] = (simhost.WitnessArgs{Lock: lockBytes, HasLock: true}).Serialize()

	code, err := sighashlock.Verify(sim)
	require.Error(t, err, "an unknown coverage label must be rejected")
	require.Equal(t, sighashlock.CodeInvalidLabel, code)
}

// TestScenarioWrongKey (S6) covers a structurally valid signature that
// simply doesn't correspond to the script's Args.
func TestScenarioWrongKey(t *testing.T) {
	_, args := testKey(t, 0x06)
	signer, _ := testKey(t, 0x60) // unrelated key
	tx, lock := newFixture(args, 1, 0)
	sim := simhost.New(tx, lock, []int{0})

	signGroup(t, sim, signer, endOfList)

	code, err := sighashlock.Verify(sim)
	require.Error(t, err, "a signature from an unrelated key must be rejected")
	require.Equal(t, sighashlock.CodePubkeyBlake160Hash, code)
}

// TestScenarioArgsWrongSize (S7) covers a script whose Args field isn't
// exactly 20 bytes.
func TestScenarioArgsWrongSize(t *testing.T) {
	_, args := testKey(t, 0x07)
	tx, lock := newFixture(args, 1, 0)
	lock.Args = append(append([]byte{}, args[:]...), 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	tx.InputCells[0].Lock = lock
	sim := simhost.New(tx, lock, []int{0})

	sim.Tx.Witnesses[0] = (simhost.WitnessArgs{Lock: simhost.BuildLockBytes(endOfList), HasLock: true}).Serialize()

	code, err := sighashlock.Verify(sim)
	require.Error(t, err, "a 32-byte Args field must be rejected")
	require.Equal(t, sighashlock.CodeArgumentsLen, code)
}

// TestAntiReplayGroupInputPrefix checks that the mandatory group-input
// prefix actually binds the group's own input order: reordering the same
// two inputs (keeping the rest of the transaction and the witness bytes
// untouched) must invalidate the existing signature.
func TestAntiReplayGroupInputPrefix(t *testing.T) {
	priv, args := testKey(t, 0x08)
	tx, lock := newFixture(args, 2, 0)
	sim := simhost.New(tx, lock, []int{0, 1})

	signGroup(t, sim, priv, endOfList)

	code, err := sighashlock.Verify(sim)
	require.NoError(t, err, "verify before reordering")
	require.Equal(t, sighashlock.CodeOK, code)

	tx.Inputs[0], tx.Inputs[1] = tx.Inputs[1], tx.Inputs[0]
	tx.InputCells[0], tx.InputCells[1] = tx.InputCells[1], tx.InputCells[0]
	tx.InputsData[0], tx.InputsData[1] = tx.InputsData[1], tx.InputsData[0]

	code, err = sighashlock.Verify(sim)
	require.Error(t, err, "swapping the group's own input order must invalidate the signature")
	t.Logf("reordered verification failed as expected: %s", spew.Sdump(code))
}

// TestSelfCommitmentIdempotentZeroing checks that Digest doesn't depend
// on whatever placeholder bytes occupy the witness's signature field
// before the real signature is spliced in.
func TestSelfCommitmentIdempotentZeroing(t *testing.T) {
	_, args := testKey(t, 0x09)
	tx, lock := newFixture(args, 1, 0)
	sim := simhost.New(tx, lock, []int{0})

	coverage := endOfList
	placeholderA := simhost.WitnessArgs{Lock: simhost.BuildLockBytes(coverage), HasLock: true}
	sim.Tx.Witnesses[0] = placeholderA.Serialize()
	digestA, err := sighashlock.Digest(sim)
	require.NoError(t, err, "digest with zero placeholder")

	lockB := append(append([]byte{}, coverage...), make([]byte, 65)...)
	for i := len(coverage); i < len(lockB); i++ {
		lockB[i] = 0xFF
	}
	placeholderB := simhost.WitnessArgs{Lock: lockB, HasLock: true}
	sim.Tx.Witnesses[0] = placeholderB.Serialize()
	digestB, err := sighashlock.Digest(sim)
	require.NoError(t, err, "digest with non-zero placeholder")

	require.Equal(t, digestA, digestB, "digest must not depend on the signature placeholder's content")
}

// TestDeterminism checks that verifying the same transaction twice
// produces identical results.
func TestDeterminism(t *testing.T) {
	priv, args := testKey(t, 0x0A)
	tx, lock := newFixture(args, 1, 1)
	sim := simhost.New(tx, lock, []int{0})

	coverage := append(coverageOp(byte(sighashlock.LabelSighashAll), 0, 0), endOfList...)
	signGroup(t, sim, priv, coverage)

	code1, err1 := sighashlock.Verify(sim)
	code2, err2 := sighashlock.Verify(sim)
	require.Equal(t, code1, code2)
	require.Equal(t, err1 == nil, err2 == nil)
}
