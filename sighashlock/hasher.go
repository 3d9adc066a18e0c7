package sighashlock

import (
	"golang.org/x/crypto/blake2b"
)

// DigestSize is the size of the final signing digest (BLAKE2b-256).
const DigestSize = 32

// hasher is the single BLAKE2b-256 absorbing session a verification run uses:
// initialized once, finalized exactly once, never reset mid-verification.
// It imposes no framing between absorbed objects beyond what callers add
// themselves (§4.5's explicit length prefixes).
type hasher struct {
	sum interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

func newHasher() *hasher {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on a bad key length; nil is
		// always valid.
		panic(err)
	}
	return &hasher{sum: h}
}

// absorb appends bytes to the session. It never fails: the underlying
// hash.Hash.Write never returns an error.
func (s *hasher) absorb(b []byte) {
	s.sum.Write(b)
}

// windowLoader reads a positioned window of some host object: it fills
// buf starting at the object's byte offset and returns the object's
// authoritative total length, exactly like the real load_cell/load_input
// syscalls (which always report the full object length regardless of how
// much of it fits in the caller's buffer). A C implementation targeting a
// minimal binary might avoid a first-class callable here; that constraint
// doesn't apply to this Go port, where a closure is the idiomatic and
// equally cheap way to parameterize the three call sites in coverage.go
// (cell, cell data, input).
type windowLoader func(offset int, buf []byte) (totalLength int, err error)

// absorbObject streams an arbitrarily large host object into the session
// in StreamWindowSize windows, per §4.2: the first window determines the
// reported total length; subsequent windows re-issue positioned reads
// until that many bytes have been absorbed.
func (s *hasher) absorbObject(load windowLoader) error {
	window := make([]byte, StreamWindowSize)

	total, err := load(0, window)
	if err != nil {
		return err
	}
	offset := total
	if offset > StreamWindowSize {
		offset = StreamWindowSize
	}
	s.absorb(window[:offset])

	for offset < total {
		if _, err := load(offset, window); err != nil {
			return err
		}
		chunk := total - offset
		if chunk > StreamWindowSize {
			chunk = StreamWindowSize
		}
		s.absorb(window[:chunk])
		offset += chunk
	}
	return nil
}

// finalize produces the 32-byte digest. The session must not be used
// again afterward.
func (s *hasher) finalize() [DigestSize]byte {
	var out [DigestSize]byte
	copy(out[:], s.sum.Sum(nil))
	return out
}
