package simhost

import (
	"github.com/ckb-open-tx/sighashlock"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// BuildLockBytes assembles a coverage array (ops, each already
// molecule's 3-byte tagged form, terminated by the caller) followed by a
// 65-byte zero-filled signature placeholder. The placeholder's content
// never matters: the finalizer zeroes it again before absorbing the
// witness, so any fixture builder can pass whatever bytes it likes here
// (zero is the conventional choice, matching a freshly allocated
// buffer).
func BuildLockBytes(coverage []byte) []byte {
	out := make([]byte, len(coverage)+65)
	copy(out, coverage)
	return out
}

// Sign computes the digest sim's current witness-0 Lock field commits
// to (via sighashlock.Digest) and produces a 65-byte wire-format
// recoverable signature over it with priv: a 64-byte compact signature
// followed by a single recovery-id byte in [0,3], the reverse of
// toRecoverableHeader in sighashlock/signature.go.
//
// This is the one place this module signs anything: it is fixture/test
// tooling standing in for an external, out-of-scope signer, not the
// lock script itself.
func Sign(sim *Sim, priv *secp256k1.PrivateKey) ([65]byte, error) {
	var out [65]byte

	digest, err := sighashlock.Digest(sim)
	if err != nil {
		return out, err
	}

	sig := ecdsa.SignCompact(priv, digest[:], true)
	// sig is header-byte-first: sig[0] = 27/31 + recovery id (+4 for a
	// compressed key, which SignCompact(..., true) always produces
	// here), sig[1:65] the 64-byte compact signature.
	recID := sig[0] - 31
	copy(out[:64], sig[1:])
	out[64] = recID
	return out, nil
}

// SignWitness re-derives the digest over sim's current group witness 0,
// signs it with priv, and returns a new WitnessArgs with the same
// InputType/OutputType fields but a Lock field equal to coverage followed
// by the real signature — the witness a verifier would accept in place
// of the zero-signature placeholder BuildLockBytes produced.
func SignWitness(sim *Sim, priv *secp256k1.PrivateKey, coverage []byte, placeholder WitnessArgs) (WitnessArgs, error) {
	sig, err := Sign(sim, priv)
	if err != nil {
		return WitnessArgs{}, err
	}

	signed := placeholder
	signed.Lock = append(append([]byte{}, coverage...), sig[:]...)
	signed.HasLock = true
	return signed, nil
}
