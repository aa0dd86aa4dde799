package dispatch

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/interpreter"
	"github.com/movevm/txexec/session"
	"github.com/movevm/txexec/staging"
	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

// RunBlockPrologue invokes the block module's prologue function under a
// zero-cost schedule with the reserved VM address as sender (spec.md §4.6
// "Block-prologue run", §3 "For block-prologue synthesis"). Failure here is
// a driver invariant violation, not a user-facing outcome: block metadata is
// not attacker-controlled, so any error discards rather than keeping a
// partial effect.
func (d Dispatcher) RunBlockPrologue(cache *staging.Cache, bm *types.BlockMetadata) types.TransactionOutput {
	zero := gasmeter.NewSystem(gasmeter.ZeroCostTable{}, ^uint64(0))
	// The five call arguments spec.md §4.8 names: sender (passed below as the
	// ExecuteFunction sender), round, timestamp, previous-vote vector,
	// proposer.
	args := [][]byte{encodeU64(bm.Round), encodeU64(bm.Timestamp), encodeVotes(bm.PreviousVotes), bm.Proposer.Bytes()}

	sess := session.New(d.Factory, cache)
	if err := sess.ExecuteFunction(types.BlockModule, interpreter.FunctionBlockPrologue, nil, args, bm.Proposer, zero); err != nil {
		sess.Drop()
		return types.DiscardOutput(vmstatus.Discard(err))
	}
	cs, err := sess.Finish()
	if err != nil {
		return types.DiscardOutput(vmstatus.Discard(err))
	}
	return types.KeepOutput(cs, 0, vmstatus.ToTransactionStatus(nil))
}

// RunWaypoint applies a privileged waypoint change set directly to cache
// with no session or policy involved (spec.md §4.8 "Waypoint run"): it is
// trusted input produced by the genesis/recovery process, not a user
// transaction, so it never fails for policy reasons. It still reads every
// access path the change set will write, through the StagingCache, proving
// read-before-write safety, and reloads on-chain config before applying
// unconditionally (spec.md §5 "on-chain configuration is re-read ... after
// every WaypointRun") so a storage error surfaces as a discard rather than
// an apply whose subsequent config reload silently failed.
func (d Dispatcher) RunWaypoint(cache *staging.Cache, cs *types.ChangeSet) types.TransactionOutput {
	if cs == nil || cs.WriteSet == nil {
		cs = &types.ChangeSet{WriteSet: types.NewWriteSet()}
	}

	var touchErr error
	cs.WriteSet.Iter(func(path types.AccessPath, _ types.WriteOp) {
		if touchErr != nil {
			return
		}
		if _, _, err := cache.Read(path); err != nil {
			touchErr = err
		}
	})
	if touchErr != nil {
		return types.DiscardOutput(vmstatus.Discard(touchErr))
	}

	if _, _, err := d.Config.Load(); err != nil {
		return types.DiscardOutput(vmstatus.Discard(vmstatus.ErrStorageError.Wrap(err.Error())))
	}

	cache.Apply(cs.WriteSet)
	return types.KeepOutput(*cs, 0, vmstatus.ToTransactionStatus(nil))
}

func encodeU64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// encodeVotes concatenates the previous-vote addresses in order, the
// vector argument spec.md §4.8 names alongside round/timestamp/proposer.
func encodeVotes(votes []common.Address) []byte {
	b := make([]byte, 0, len(votes)*common.AddressLength)
	for _, v := range votes {
		b = append(b, v.Bytes()...)
	}
	return b
}
