package sighashlock

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Code is one of the fatal exit codes a verification run can produce. The
// values match a fixed exit-code table; a real VM build returns Code
// as the process's signed exit status.
type Code int32

const (
	// CodeOK is returned on successful verification. It is never wrapped
	// in an error.
	CodeOK Code = 0

	// CodeArgumentsLen is returned when LockBytes.size <= 65, when the
	// sighash-coverage array and signature don't exactly fill
	// LockBytes, or when Args.size != 20.
	CodeArgumentsLen Code = -1

	// CodeEncoding is returned on any molecule schema verification
	// failure, including a WitnessArgs with no Lock field.
	CodeEncoding Code = -2

	// CodeSyscall is returned when the host reports an unexpected
	// length for a fixed-size object (e.g. a transaction hash that
	// isn't 32 bytes).
	CodeSyscall Code = -3

	// CodeSecpParseSignature is returned when the 65-byte signature
	// can't be parsed as a compact signature plus recovery id.
	CodeSecpParseSignature Code = -11

	// CodeSecpRecoverPubkey is returned when public-key recovery
	// against the final digest fails.
	CodeSecpRecoverPubkey Code = -12

	// CodeSecpSerializePubkey is returned when the recovered public key
	// can't be serialized in compressed form.
	CodeSecpSerializePubkey Code = -13

	// CodeScriptTooLong is returned when the executing script's own
	// bytes exceed the 32 KiB script buffer.
	CodeScriptTooLong Code = -21

	// CodeWitnessSize is returned when any absorbed witness exceeds the
	// 32 KiB witness buffer.
	CodeWitnessSize Code = -22

	// CodePubkeyBlake160Hash is returned when the recovered public key's
	// BLAKE2b-160 hash doesn't match Args.
	CodePubkeyBlake160Hash Code = -31

	// CodeInvalidLabel is returned for an unknown CoverageOp label, or a
	// coverage array truncated before its terminator.
	CodeInvalidLabel Code = -50

	// CodeInvalidMask is reserved for a future mask-validation rule; no path
	// currently produces it (no coverage op mask value is currently
	// rejected outright — unknown mask bits are ignored, per §4.3).
	CodeInvalidMask Code = -51
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeArgumentsLen:
		return "ARGUMENTS_LEN"
	case CodeEncoding:
		return "ENCODING"
	case CodeSyscall:
		return "SYSCALL"
	case CodeSecpParseSignature:
		return "SECP_PARSE_SIGNATURE"
	case CodeSecpRecoverPubkey:
		return "SECP_RECOVER_PUBKEY"
	case CodeSecpSerializePubkey:
		return "SECP_SERIALIZE_PUBKEY"
	case CodeScriptTooLong:
		return "SCRIPT_TOO_LONG"
	case CodeWitnessSize:
		return "WITNESS_SIZE"
	case CodePubkeyBlake160Hash:
		return "PUBKEY_BLAKE160_HASH"
	case CodeInvalidLabel:
		return "INVALID_LABEL"
	case CodeInvalidMask:
		return "INVALID_MASK"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(c))
	}
}

// VerifyError pairs a fatal Code with the underlying cause, carrying a
// stack trace so a failing verification can be diagnosed without the
// hot path ever branching on whether it's under test. The cause is held
// by name (not embedded) since *goerrors.Error already has its own
// Error() method that would otherwise collide with this type's.
type VerifyError struct {
	Code  Code
	Cause *goerrors.Error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Cause.Error())
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *VerifyError) Unwrap() error {
	return e.Cause.Err
}

// fail builds a VerifyError for code whose cause is the formatted message,
// wrapped with a stack trace.
func fail(code Code, format string, args ...interface{}) *VerifyError {
	msg := fmt.Sprintf(format, args...)
	return &VerifyError{
		Code:  code,
		Cause: goerrors.Wrap(fmt.Errorf("%s", msg), 1),
	}
}

// wrap attaches code to an existing error, preserving its message.
func wrap(code Code, err error) *VerifyError {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*VerifyError); ok {
		return ve
	}
	return &VerifyError{
		Code:  code,
		Cause: goerrors.Wrap(err, 1),
	}
}
