// Package vmstatus classifies driver errors into the VMStatus taxonomy of
// spec.md §7, using the same registered-codespace error style the teacher
// uses throughout ante/ and x/vm (cosmossdk.io/errors) instead of ad hoc
// errors.New strings.
package vmstatus

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/movevm/txexec/types"
)

const codespace = "txexec"

// StatusCode enumerates the VMStatus kinds named in spec.md §7, grouped by
// category in declaration order.
const (
	_ = iota
	codeInvalidSignature
	codeInvalidGasSpecifier
	codeGasUnitPriceBelowMin
	codeMaxGasExceedsMax
	codeExceededMaxTransactionSize
	codeSequenceNumberMismatch
	codeAuthKeyMismatch
	codeInsufficientBalance
	codeAccountDoesNotExist
	codeUnknownScript
	codeInvalidModulePublisher
	codeOutOfGas
	codeArithmeticAbort
	codeTypeError
	codeLinkingError
	codeUserAbort
	codeEpilogueFailure
	codeStorageError
	codeMalformed
	codeUnreachable
	codeInvalidWriteSet
	codeExecuted
)

// Registered errors. Each is attributed a §7 propagation category in its
// doc comment; Classify below turns the category into Keep/Discard.
var (
	ErrInvalidSignature          = errorsmod.Register(codespace, codeInvalidSignature, "invalid signature")
	ErrInvalidGasSpecifier       = errorsmod.Register(codespace, codeInvalidGasSpecifier, "invalid gas specifier")
	ErrGasUnitPriceBelowMin      = errorsmod.Register(codespace, codeGasUnitPriceBelowMin, "gas unit price below minimum")
	ErrMaxGasExceedsMax          = errorsmod.Register(codespace, codeMaxGasExceedsMax, "max gas exceeds system limit")
	ErrExceededMaxTransactionSize = errorsmod.Register(codespace, codeExceededMaxTransactionSize, "transaction size exceeds maximum")
	ErrSequenceNumberMismatch    = errorsmod.Register(codespace, codeSequenceNumberMismatch, "sequence number mismatch")
	ErrAuthKeyMismatch           = errorsmod.Register(codespace, codeAuthKeyMismatch, "authentication key mismatch")
	ErrInsufficientBalance       = errorsmod.Register(codespace, codeInsufficientBalance, "insufficient balance")
	ErrAccountDoesNotExist       = errorsmod.Register(codespace, codeAccountDoesNotExist, "account does not exist")
	ErrUnknownScript             = errorsmod.Register(codespace, codeUnknownScript, "script not in publishing allowlist")
	ErrInvalidModulePublisher    = errorsmod.Register(codespace, codeInvalidModulePublisher, "sender not allowed to publish modules")
	ErrOutOfGas                  = errorsmod.Register(codespace, codeOutOfGas, "out of gas")
	ErrArithmeticAbort           = errorsmod.Register(codespace, codeArithmeticAbort, "arithmetic error")
	ErrTypeError                 = errorsmod.Register(codespace, codeTypeError, "type error")
	ErrLinkingError              = errorsmod.Register(codespace, codeLinkingError, "linking error")
	ErrUserAbort                 = errorsmod.Register(codespace, codeUserAbort, "user abort")
	ErrEpilogueFailure           = errorsmod.Register(codespace, codeEpilogueFailure, "epilogue failed on well-formed account")
	ErrStorageError              = errorsmod.Register(codespace, codeStorageError, "backing state view error")
	ErrMalformed                 = errorsmod.Register(codespace, codeMalformed, "malformed system input")
	ErrUnreachable               = errorsmod.Register(codespace, codeUnreachable, "unreachable transaction flow")
	ErrInvalidWriteSet           = errorsmod.Register(codespace, codeInvalidWriteSet, "write set overlap or malformed change set")
)

// Executed is the non-error success status for a Keep(Executed) output.
var Executed = errorsmod.Register(codespace, codeExecuted, "executed")

// IsBodyFailure reports whether err belongs to the "keep, run failure
// epilogue" category rather than an outright discard category.
func IsBodyFailure(err error) bool {
	if err == nil {
		return false
	}
	return errorsmod.IsOf(err, ErrOutOfGas, ErrArithmeticAbort, ErrTypeError, ErrLinkingError, ErrUserAbort)
}

// ToTransactionStatus converts err into a spec.md §3 TransactionStatus.
// A nil err yields Keep(Executed). Body failures yield a Keep status (the
// caller is expected to have already run the failure epilogue); everything
// else yields Discard.
func ToTransactionStatus(err error) types.TransactionStatus {
	if err == nil {
		return types.TransactionStatus{Kind: types.StatusKeep, Code: codeExecuted, Message: "executed"}
	}
	code := errorsmod.ABCICode(err)
	kind := types.StatusDiscard
	if IsBodyFailure(err) {
		kind = types.StatusKeep
	}
	return types.TransactionStatus{Kind: kind, Code: code, Message: err.Error()}
}

// Discard is a convenience constructor for a Discard TransactionStatus from
// an arbitrary classified error.
func Discard(err error) types.TransactionStatus {
	st := ToTransactionStatus(err)
	st.Kind = types.StatusDiscard
	return st
}
