// Package simhost is an in-memory stand-in for the CKB-VM syscalls
// sighashlock.HostAdapter models. It exists to build and sign fixture
// transactions without a real chain node: this package's own tests and the
// CLI's digest/verify/batch-verify tooling all go through it. The
// sighashlock package's own tests use a separate stub host instead.
package simhost
