// Package sigverify defines the pure, stateless signature-check
// collaborator the BatchRunner fans out across goroutines inside a
// UserRun (spec.md §4.8, §5 "Concurrency & Resource Model"). Signature
// cryptography itself is a Non-goal; this package fixes the contract and
// ships a deterministic stand-in for tests, grounded on how the teacher's
// ante/evm/05_signature_verification.go isolates SignatureVerification as
// a pure function of (msg, tx, signer) with no shared state.
package sigverify

import (
	"bytes"

	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

// Verifier checks one signed transaction's signature. Implementations must
// be safe to call concurrently with no shared mutable state (spec.md §5).
type Verifier interface {
	Verify(txn *types.SignedTransaction) error
}

// Stub treats the signature as valid iff it is a non-empty HMAC-style tag
// equal to a deterministic function of the sender and sequence number.
// This is a test/reference stand-in only; real signature cryptography is
// out of scope (spec.md Non-goals).
type Stub struct{}

func (Stub) Verify(txn *types.SignedTransaction) error {
	if len(txn.Signature) == 0 {
		return vmstatus.ErrInvalidSignature
	}
	want := expectedTag(txn)
	if !bytes.Equal(txn.Signature, want) {
		return vmstatus.ErrInvalidSignature
	}
	return nil
}

// expectedTag is a toy deterministic "signature" so tests can construct
// both valid and invalid signed transactions without real cryptography.
func expectedTag(txn *types.SignedTransaction) []byte {
	tag := make([]byte, 0, 20+8)
	tag = append(tag, txn.Sender.Bytes()...)
	seq := txn.SequenceNumber
	for i := 0; i < 8; i++ {
		tag = append(tag, byte(seq>>(56-8*i)))
	}
	return tag
}

// Sign produces the Stub-compatible signature for txn, for use by tests
// and example callers constructing fixtures.
func Sign(txn *types.SignedTransaction) []byte {
	return expectedTag(txn)
}
