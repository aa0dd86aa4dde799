// Package batch implements the single-pass BatchPartitioner of spec.md
// §4.7, grounded on the original Rust's chunk_block_transactions
// (language/libra-vm/src/libra_transaction_executor.rs) translated
// idiomatically as a buffered for-loop, the same shape the teacher's
// mempool/iterator.go uses to buffer and flush runs from an ordered
// source.
package batch

import (
	"github.com/movevm/txexec/types"
)

// Partition splits txns into contiguous, flow-classified
// types.TransactionBlocks, preserving order (spec.md §4.7):
//
//   - BlockMetadata and WaypointWriteSet always flush the pending user-run
//     buffer and emit their own singleton block.
//   - A UserTxn with WriteSet payload flushes and emits a singleton
//     WriteSetRun.
//   - Any other UserTxn accumulates into a pending UserRun.
//   - At end of input, a non-empty buffer is flushed.
func Partition(txns []types.Transaction) []types.TransactionBlock {
	var blocks []types.TransactionBlock
	var pending []*types.SignedTransaction

	flush := func() {
		if len(pending) > 0 {
			blocks = append(blocks, types.TransactionBlock{UserRun: pending})
			pending = nil
		}
	}

	for _, txn := range txns {
		switch txn.Kind {
		case types.TxnBlockMetadata:
			flush()
			bm := txn.BlockMetadata
			blocks = append(blocks, types.TransactionBlock{BlockPrologueRun: bm})
		case types.TxnWaypointWriteSet:
			flush()
			cs := txn.Waypoint
			blocks = append(blocks, types.TransactionBlock{WaypointRun: cs})
		case types.TxnUser:
			if txn.User.Payload.Kind == types.PayloadWriteSet {
				flush()
				t := txn.User
				blocks = append(blocks, types.TransactionBlock{WriteSetRun: t})
			} else {
				pending = append(pending, txn.User)
			}
		}
	}
	flush()
	return blocks
}
