// Package prologue implements the three prologue/epilogue flavors of
// spec.md §4.5: user prologue, success epilogue, failure epilogue, plus
// the write-set variants used by the privileged write-set flow (§4.9).
//
// Grounded on ante/evm/06_account_verification.go (VerifyAccountBalance)
// and ante/evm/09_increment_sequence.go (IncrementNonce) for the
// sequence/balance bookkeeping shape, and on the original Rust's
// run_prologue/run_success_epilogue/run_failure_epilogue split for the
// session lifecycle around each call.
package prologue

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/interpreter"
	"github.com/movevm/txexec/types"
)

func encodeU64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// RunUserPrologue verifies sender exists, sequence number matches,
// authentication key matches, and sender can pay max_gas*price (spec.md
// §4.5 "User prologue"). Metering must already be disabled by the caller.
func RunUserPrologue(vm interpreter.VM, meta types.TransactionMetadata, meter *gasmeter.Meter) error {
	maxCost := meta.MaxCost()
	args := [][]byte{
		encodeU64(meta.SequenceNumber),
		maxCost.Bytes(),
		meta.PublicKey,
	}
	return vm.ExecuteFunction(types.AccountModule, interpreter.FunctionAccountPrologue, nil, args, meta.Sender, meter)
}

// RunSuccessEpilogue charges actual gas used, refunds the remainder, bumps
// the sequence number, and emits reward events (spec.md §4.5 "Success
// epilogue"). Metering must already be disabled by the caller.
func RunSuccessEpilogue(vm interpreter.VM, meta types.TransactionMetadata, gasUsed uint64, meter *gasmeter.Meter) error {
	args := [][]byte{encodeU64(gasUsed), encodeU64(meta.GasUnitPrice)}
	return vm.ExecuteFunction(types.AccountModule, interpreter.FunctionAccountEpilogue, nil, args, meta.Sender, meter)
}

// RunFailureEpilogue charges gas used and bumps the sequence number but
// emits no user events (spec.md §4.5 "Failure epilogue"). It must be run
// over a fresh session bound to the pre-body state (spec.md §9
// "session drop = rollback"); the caller is responsible for constructing
// that fresh session.
func RunFailureEpilogue(vm interpreter.VM, meta types.TransactionMetadata, gasUsed uint64, meter *gasmeter.Meter) error {
	return RunSuccessEpilogue(vm, meta, gasUsed, meter)
}

// RunWriteSetPrologue validates writer authority for a privileged
// write-set transaction (spec.md §4.5 "Writeset prologue").
func RunWriteSetPrologue(vm interpreter.VM, sender common.Address, meter *gasmeter.Meter) error {
	return vm.ExecuteFunction(types.AccountModule, interpreter.FunctionWriteSetPrologue, nil, nil, sender, meter)
}

// RunWriteSetEpilogue emits the reconfiguration event for a write-set
// transaction (spec.md §4.5 "Writeset epilogue").
func RunWriteSetEpilogue(vm interpreter.VM, sender common.Address, meter *gasmeter.Meter) error {
	return vm.ExecuteFunction(types.AccountModule, interpreter.FunctionWriteSetEpilogue, nil, nil, sender, meter)
}

// BumpSequenceNumber invokes the account module's sequence-bump function
// directly, used by the write-set flow's step 4 (spec.md §4.9) which must
// run under a zero-cost gas schedule rather than the transaction's own
// meter.
func BumpSequenceNumber(vm interpreter.VM, sender common.Address, meter *gasmeter.Meter) error {
	return vm.ExecuteFunction(types.AccountModule, interpreter.FunctionBumpSequenceNumber, nil, nil, sender, meter)
}
