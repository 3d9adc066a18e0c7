package sighashlock

// ArgsSize is the required length of the script's Args: the BLAKE2b-160
// hash of a compressed secp256k1 public key.
const ArgsSize = 20

// Args is the script's argument: a BLAKE2b-160 public key hash.
type Args [ArgsSize]byte

// ReadArgs validates and copies a script's Args field.
func ReadArgs(buf []byte) (Args, error) {
	var a Args
	if len(buf) != ArgsSize {
		return a, fail(CodeArgumentsLen, "args: need exactly %d bytes, have %d", ArgsSize, len(buf))
	}
	copy(a[:], buf)
	return a, nil
}
