package dispatch

import (
	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/prologue"
	"github.com/movevm/txexec/session"
	"github.com/movevm/txexec/staging"
	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

// RunWriteSetTransaction executes a privileged write-set user transaction,
// the distinct 9-step flow of spec.md §4.9. Signature verification (step 1)
// is the caller's responsibility, mirroring the UserRun path: the
// BatchRunner verifies before ever dispatching here. Unlike the
// script/module flow, the sender's own authentication is checked but no
// gas is charged against the transaction's declared budget: writeset
// bookkeeping runs under a zero-cost schedule (spec.md §4.9 step 4, "must
// run under a zero-cost gas schedule").
//
// Grounded on the original Rust's process_writeset_transaction and on
// x/vm/keeper/state_transition.go's ApplyTransaction cleanup branch, which
// this flow's steps 6-9 mirror: run the privileged epilogue over a fresh
// session, then combine its effects with the embedded change set under the
// asymmetric concatenation spec.md §4.9 step 9 requires.
func (d Dispatcher) RunWriteSetTransaction(cache *staging.Cache, txn *types.SignedTransaction) types.TransactionOutput {
	// Step 2: confirm payload is actually a change set.
	if txn.Payload.Kind != types.PayloadWriteSet {
		return types.DiscardOutput(vmstatus.Discard(vmstatus.ErrUnreachable))
	}
	meta := types.NewTransactionMetadata(txn)
	embedded := txn.Payload.WriteSet
	if embedded == nil || embedded.WriteSet == nil {
		embedded = &types.ChangeSet{WriteSet: types.NewWriteSet()}
	}

	// Load current on-chain configuration (spec.md §5 "re-read after every
	// WriteSetRun" applies to the subsequent run, not this one).
	_, _, err := d.Config.Load()
	if err != nil {
		return types.DiscardOutput(vmstatus.Discard(vmstatus.ErrStorageError.Wrap(err.Error())))
	}
	zero := gasmeter.NewSystem(gasmeter.ZeroCostTable{}, ^uint64(0))

	// Open a session over the current staging snapshot.
	sess := session.New(d.Factory, cache)

	// Step 3: writeset prologue verifies the sender holds writer authority.
	if err := prologue.RunWriteSetPrologue(sess, meta.Sender, zero); err != nil {
		sess.Drop()
		return types.DiscardOutput(vmstatus.Discard(err))
	}

	// Step 4: bump the sender's sequence number under the zero-cost
	// schedule, independent of the embedded change set's own effects.
	if err := prologue.BumpSequenceNumber(sess, meta.Sender, zero); err != nil {
		sess.Drop()
		return types.DiscardOutput(vmstatus.Discard(err))
	}

	// Step 5: writeset epilogue emits the reconfiguration event.
	if err := prologue.RunWriteSetEpilogue(sess, meta.Sender, zero); err != nil {
		sess.Drop()
		return types.DiscardOutput(vmstatus.Discard(err))
	}

	// Step 6: touch every access path the embedded write set will update,
	// through the StagingCache, proving read-before-write safety before the
	// session is finalized. A storage error here discards rather than
	// corrupting the combined output.
	var touchErr error
	embedded.WriteSet.Iter(func(path types.AccessPath, _ types.WriteOp) {
		if touchErr != nil {
			return
		}
		if _, _, err := cache.Read(path); err != nil {
			touchErr = err
		}
	})
	if touchErr != nil {
		sess.Drop()
		return types.DiscardOutput(vmstatus.Discard(touchErr))
	}

	// Step 7: finalize the session into the epilogue effects bundle.
	epilogueCS, err := sess.Finish()
	if err != nil {
		return types.DiscardOutput(vmstatus.Discard(err))
	}

	// Step 8: the epilogue's own writes/events must not collide with the
	// embedded change set's (spec.md §4.9 "disjointness check") — a
	// colliding writeset transaction is malformed input, not a runtime
	// failure, so it discards rather than keeping a partial result.
	if err := checkDisjoint(epilogueCS, *embedded); err != nil {
		return types.DiscardOutput(vmstatus.Discard(err))
	}

	// Step 9: combine with the asymmetric order spec.md §4.9 requires:
	// write set is epilogue ∥ embedded, events are embedded ∥ epilogue.
	combinedWS := types.Concat(epilogueCS.WriteSet, embedded.WriteSet)
	combinedEvents := types.ConcatEvents(embedded.Events, epilogueCS.Events)

	out := types.KeepOutput(types.ChangeSet{WriteSet: combinedWS, Events: combinedEvents}, 0, vmstatus.ToTransactionStatus(nil))
	return out
}

func checkDisjoint(epilogue, embedded types.ChangeSet) error {
	epiPaths := epilogue.WriteSet.Paths()
	for p := range embedded.WriteSet.Paths() {
		if _, clash := epiPaths[p]; clash {
			return vmstatus.ErrInvalidWriteSet.Wrap("embedded write set overlaps epilogue write set")
		}
	}
	epiKeys := types.EventKeys(epilogue.Events)
	for k := range types.EventKeys(embedded.Events) {
		if _, clash := epiKeys[k]; clash {
			return vmstatus.ErrInvalidWriteSet.Wrap("embedded events overlap epilogue events")
		}
	}
	return nil
}
