package interpreter

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

// ScriptNoop and ScriptLoop are sentinel script bodies recognized by Stub,
// standing in for "a script that returns immediately" and "a script that
// runs until it exhausts its gas meter" from spec.md §8 scenarios S1/S2.
var (
	ScriptNoop = []byte("noop")
	ScriptLoop = []byte("loop")
)

// loopStepCost is the per-iteration charge ScriptLoop applies; chosen so a
// small max_gas_amount exhausts in a handful of iterations.
const loopStepCost = 1

// StubFactory builds deterministic Stub sessions, grounded on how the
// teacher substitutes a fake EVMKeeper for its ante-handler test suite
// rather than driving a real EVM in unit tests.
type StubFactory struct{}

func (StubFactory) NewSession(view types.StateView) VM {
	return &Stub{view: view, pending: types.NewWriteSet()}
}

// Stub is a minimal, deterministic interpreter session. It implements just
// enough account bookkeeping (balance/sequence/authkey) for the driver's
// prologue/epilogue flows to be exercised end-to-end; it is not a bytecode
// interpreter and makes no claim to Move semantics, consistent with
// spec.md's Non-goals.
type Stub struct {
	view    types.StateView
	pending *types.WriteSet
	events  []types.Event
	dropped bool
}

func (s *Stub) read(path types.AccessPath) ([]byte, bool, error) {
	key := string(path)
	found := false
	var val []byte
	s.pending.Iter(func(p types.AccessPath, op types.WriteOp) {
		if string(p) == key {
			found = true
			if !op.IsDeletion() {
				val = op.Value
			}
		}
	})
	if found {
		return val, val != nil, nil
	}
	return s.view.Get(path)
}

func (s *Stub) write(path types.AccessPath, value []byte) {
	s.pending.Set(path, types.WriteOp{Kind: types.WriteOpValue, Value: value})
}

func (s *Stub) emit(event types.Event) {
	s.events = append(s.events, event)
}

// ExecuteScript runs ScriptNoop or ScriptLoop; any other code is rejected
// as a linking error, since the stub has no real bytecode loader.
func (s *Stub) ExecuteScript(code []byte, _ []string, _ [][]byte, _ common.Address, meter *gasmeter.Meter) error {
	switch {
	case bytes.Equal(code, ScriptNoop):
		return nil
	case bytes.Equal(code, ScriptLoop):
		for {
			if err := meter.Charge(loopStepCost); err != nil {
				return err
			}
		}
	default:
		return vmstatus.ErrLinkingError.Wrap("unknown script code")
	}
}

// PublishModule records the module bytecode at target; the stub does not
// validate bytecode (out of scope).
func (s *Stub) PublishModule(code []byte, target common.Address, meter *gasmeter.Meter) error {
	if len(code) == 0 {
		return vmstatus.ErrMalformed.Wrap("empty module bytecode")
	}
	if err := meter.Charge(uint64(len(code))); err != nil {
		return err
	}
	s.write(append([]byte("module/"), target.Bytes()...), code)
	return nil
}

// ExecuteFunction implements the well-known account/block system
// functions the driver's prologue/epilogue/block-prologue flows call.
func (s *Stub) ExecuteFunction(module types.ModuleID, function string, _ []string, args [][]byte, sender common.Address, meter *gasmeter.Meter) error {
	switch {
	case module.Name == types.AccountModule.Name && function == FunctionAccountPrologue:
		return s.accountPrologue(sender, args)
	case module.Name == types.AccountModule.Name && function == FunctionAccountEpilogue:
		return s.accountEpilogue(sender, args)
	case module.Name == types.AccountModule.Name && function == FunctionBumpSequenceNumber:
		return s.bumpSequence(sender)
	case module.Name == types.BlockModule.Name && function == FunctionBlockPrologue:
		return s.blockPrologue(sender, args)
	case module.Name == types.AccountModule.Name && function == FunctionWriteSetPrologue:
		return s.writeSetPrologue(sender)
	case module.Name == types.AccountModule.Name && function == FunctionWriteSetEpilogue:
		return s.writeSetEpilogue(sender)
	default:
		return vmstatus.ErrLinkingError.Wrap("unknown system function " + module.Name + "::" + function)
	}
}

func (s *Stub) accountPrologue(sender common.Address, args [][]byte) error {
	if len(args) != 3 {
		return vmstatus.ErrMalformed.Wrap("account prologue expects (txn_sequence_number, max_gas_cost, auth_key)")
	}
	seqBytes, _, err := s.read(SequencePath(sender))
	if err != nil {
		return err
	}
	if seqBytes == nil {
		return vmstatus.ErrAccountDoesNotExist
	}
	accountSeq := decodeUint64(seqBytes)
	txnSeq := decodeUint64(args[0])
	if txnSeq != accountSeq {
		return vmstatus.ErrSequenceNumberMismatch
	}

	authBytes, _, err := s.read(AuthKeyPath(sender))
	if err != nil {
		return err
	}
	if len(args[2]) > 0 && !bytes.Equal(authBytes, args[2]) {
		return vmstatus.ErrAuthKeyMismatch
	}

	balBytes, _, err := s.read(BalancePath(sender))
	if err != nil {
		return err
	}
	balance := decodeUint64(balBytes)
	maxCost := decodeUint64(args[1])
	if balance < maxCost {
		return vmstatus.ErrInsufficientBalance
	}
	return nil
}

func (s *Stub) accountEpilogue(sender common.Address, args [][]byte) error {
	if len(args) != 2 {
		return vmstatus.ErrMalformed.Wrap("account epilogue expects (gas_used, gas_unit_price)")
	}
	gasUsed := decodeUint64(args[0])
	gasUnitPrice := decodeUint64(args[1])
	charge := gasUsed * gasUnitPrice

	balBytes, _, err := s.read(BalancePath(sender))
	if err != nil {
		return err
	}
	balance := decodeUint64(balBytes)
	if balance < charge {
		return vmstatus.ErrEpilogueFailure.Wrap("balance less than gas charge")
	}
	s.write(BalancePath(sender), encodeUint64(balance-charge))

	if err := s.bumpSequence(sender); err != nil {
		return vmstatus.ErrEpilogueFailure.Wrap(err.Error())
	}
	return nil
}

func (s *Stub) bumpSequence(sender common.Address) error {
	seqBytes, _, err := s.read(SequencePath(sender))
	if err != nil {
		return err
	}
	seq := decodeUint64(seqBytes)
	if seq == ^uint64(0) {
		return errors.New("sequence number overflow")
	}
	s.write(SequencePath(sender), encodeUint64(seq+1))
	return nil
}

func (s *Stub) blockPrologue(sender common.Address, args [][]byte) error {
	if len(args) < 2 {
		return vmstatus.ErrMalformed.Wrap("block prologue expects (round, timestamp, ...)")
	}
	s.emit(types.Event{
		Key:  append([]byte("block/prologue/"), sender.Bytes()...),
		Type: "NewBlockEvent",
	})
	return nil
}

func (s *Stub) writeSetPrologue(sender common.Address) error {
	seqBytes, _, err := s.read(SequencePath(sender))
	if err != nil {
		return err
	}
	if seqBytes == nil {
		return vmstatus.ErrAccountDoesNotExist
	}
	return nil
}

func (s *Stub) writeSetEpilogue(sender common.Address) error {
	s.emit(types.Event{
		Key:  append([]byte("reconfiguration/"), sender.Bytes()...),
		Type: "ReconfigurationEvent",
	})
	return nil
}

// Finish drains pending writes and events into a ChangeSet.
func (s *Stub) Finish() (types.ChangeSet, error) {
	if s.dropped {
		return types.ChangeSet{}, errors.New("session already dropped")
	}
	return types.ChangeSet{WriteSet: s.pending, Events: s.events}, nil
}

// Drop discards the session; no effect is ever applied.
func (s *Stub) Drop() {
	s.dropped = true
	s.pending = types.NewWriteSet()
	s.events = nil
}
