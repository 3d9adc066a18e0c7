package sighashlock

// Verify runs the full single-pass verification predicate: it absorbs
// the mandatory group-input prefix, interprets the caller-selected
// sighash-coverage array, finalizes the witness absorption, and checks
// the recoverable signature against the script's Args. It is the Go
// analogue of a parameterless VM entry point; callers in a real on-chain
// build would return Code as the process exit status.
//
// Verify never returns CodeOK alongside a non-nil error, and never
// returns a non-OK Code without an error explaining it.
func Verify(host HostAdapter) (Code, error) {
	digest, sig, args, err := computeDigestAndSignature(host)
	if err != nil {
		return codeOf(err), err
	}

	if err := verifySignature(sig, digest, args); err != nil {
		log.Debugf("verify: signature check failed: %v", err)
		return codeOf(err), err
	}

	log.Debugf("verify: ok, digest=%x", digest)
	return CodeOK, nil
}

// Digest computes the same 32-byte signing digest Verify checks a
// signature against, without checking one. An open-transaction builder
// calls this against a transaction whose group witness already carries a
// coverage array and a zero-filled signature placeholder, hands the
// result to an offline signer, and splices the returned signature into
// the witness afterward — the signature field is zeroed again during
// finalization regardless of what placeholder value it held here, so the
// placeholder's content never matters.
func Digest(host HostAdapter) ([DigestSize]byte, error) {
	digest, _, _, err := computeDigestAndSignature(host)
	return digest, err
}

// computeDigestAndSignature is the shared body of Verify and Digest: load
// Args and LockBytes, absorb the mandatory group-input prefix, interpret
// the coverage array, finalize the witness absorption, and split
// LockBytes' tail into its signature.
func computeDigestAndSignature(host HostAdapter) (digest [DigestSize]byte, sig [signatureSize]byte, args Args, err error) {
	args, err = loadArgs(host)
	if err != nil {
		return digest, sig, args, err
	}

	lockBytes, err := loadLockBytes(host)
	if err != nil {
		return digest, sig, args, err
	}
	if len(lockBytes) <= signatureSize {
		return digest, sig, args, fail(CodeArgumentsLen, "lock bytes: %d bytes, need more than %d", len(lockBytes), signatureSize)
	}

	h := newHasher()

	if err := absorbGroupInputPrefix(host, h); err != nil {
		return digest, sig, args, err
	}

	opsLen, err := interpretCoverage(lockBytes, host, h)
	if err != nil {
		return digest, sig, args, err
	}
	if opsLen+signatureSize != len(lockBytes) {
		return digest, sig, args, fail(CodeArgumentsLen, "lock bytes: %d bytes, want %d (ops) + %d (signature)",
			len(lockBytes), opsLen, signatureSize)
	}
	copy(sig[:], lockBytes[opsLen:])

	digest, err = finalizeWitnesses(host, h)
	if err != nil {
		return digest, sig, args, err
	}
	return digest, sig, args, nil
}

// loadArgs reads and validates the currently executing script's Args.
func loadArgs(host HostAdapter) (Args, error) {
	var args Args

	buf := make([]byte, WitnessBufSize)
	n, err := host.LoadScript(buf)
	if err != nil {
		return args, propagateHostError(err)
	}
	if n > len(buf) {
		return args, fail(CodeScriptTooLong, "script: %d bytes exceeds %d byte buffer", n, len(buf))
	}

	script, err := ReadScript(buf[:n])
	if err != nil {
		return args, err
	}
	return ReadArgs(script.Args)
}

// loadLockBytes reads the current group's first witness and extracts its
// lock field, the sighash-coverage array plus signature this package
// verifies.
func loadLockBytes(host HostAdapter) ([]byte, error) {
	buf := make([]byte, WitnessBufSize)
	n, err := host.LoadWitness(0, SourceGroupInput, buf)
	if err != nil {
		return nil, propagateHostError(err)
	}
	if n > len(buf) {
		return nil, fail(CodeWitnessSize, "group witness 0: %d bytes exceeds %d byte buffer", n, len(buf))
	}

	wa, err := ReadWitnessArgs(buf[:n])
	if err != nil {
		return nil, err
	}
	if !wa.HasLock {
		return nil, fail(CodeEncoding, "witness_args: missing lock field")
	}
	return wa.Lock, nil
}

// absorbGroupInputPrefix implements the mandatory anti-replay coverage of
// §4.4: every input in the current script group is absorbed, in index
// order, unconditionally and before any caller-selected coverage.
func absorbGroupInputPrefix(host HostAdapter, h *hasher) error {
	for idx := 0; ; idx++ {
		err := h.absorbObject(func(offset int, buf []byte) (int, error) {
			return host.LoadInput(idx, SourceGroupInput, offset, buf)
		})
		if err == ErrIndexOutOfBound {
			return nil
		}
		if err != nil {
			return propagateHostError(err)
		}
	}
}

// codeOf extracts the fatal Code from err, defaulting to CodeEncoding for
// an error this package didn't itself produce (should not happen in
// practice, since every return path above wraps through fail/wrap/
// propagateHostError).
func codeOf(err error) Code {
	if ve, ok := err.(*VerifyError); ok {
		return ve.Code
	}
	return CodeEncoding
}
