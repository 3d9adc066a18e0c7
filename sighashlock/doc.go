// Package sighashlock implements an open-transaction signature lock
// verifier for a UTXO-style, cell-based chain.
//
// Unlike a conventional SIGHASH_ALL lock, the signer selects, per witness,
// an ordered list of transaction components to commit to (see CoverageOp),
// letting third parties later extend a partially signed
// transaction without invalidating the signature, as long as they only
// extend parts the signer didn't cover. The signer can never opt out of
// committing to their own script group's inputs; that prefix is absorbed
// unconditionally before any caller-selected coverage.
//
// Verify is the single entry point, standing in for the parameterless
// VM entry point a real on-chain build of this package would export. It
// is single-threaded, allocates only fixed-size buffers, and either
// succeeds or returns one of the error Codes in errors.go.
package sighashlock
