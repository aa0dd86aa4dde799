package types

// StatusKind is the coarse outcome of executing one transaction
// (spec.md §3: Keep, Discard, Retry).
type StatusKind uint8

const (
	StatusKeep StatusKind = iota
	StatusDiscard
	StatusRetry
)

// TransactionStatus pairs the coarse outcome with the VMStatus that
// produced it. VMStatus itself lives in package vmstatus to avoid an
// import cycle between types and vmstatus (vmstatus.Classify returns a
// types.TransactionStatus).
type TransactionStatus struct {
	Kind    StatusKind
	Code    uint32
	Message string
}

// IsDiscarded reports whether the status is Discard.
func (s TransactionStatus) IsDiscarded() bool {
	return s.Kind == StatusDiscard
}

// TransactionOutput is the per-transaction result (spec.md §3).
type TransactionOutput struct {
	WriteSet *WriteSet
	Events   []Event
	GasUsed  uint64
	Status   TransactionStatus
}

// DiscardOutput builds the canonical empty-effect Discard output
// (spec.md §3 invariant: "A Discard output carries an empty write set and
// no events").
func DiscardOutput(status TransactionStatus) TransactionOutput {
	status.Kind = StatusDiscard
	return TransactionOutput{
		WriteSet: NewWriteSet(),
		Events:   nil,
		GasUsed:  0,
		Status:   status,
	}
}

// KeepOutput builds a Keep output from an effects bundle.
func KeepOutput(cs ChangeSet, gasUsed uint64, status TransactionStatus) TransactionOutput {
	status.Kind = StatusKeep
	ws := cs.WriteSet
	if ws == nil {
		ws = NewWriteSet()
	}
	return TransactionOutput{
		WriteSet: ws,
		Events:   cs.Events,
		GasUsed:  gasUsed,
		Status:   status,
	}
}

// TransactionBlock is a flow-classified contiguous run produced by the
// BatchPartitioner (spec.md §3 / §4.7).
type TransactionBlock struct {
	UserRun           []*SignedTransaction
	BlockPrologueRun  *BlockMetadata
	WaypointRun       *ChangeSet
	WriteSetRun       *SignedTransaction
}

// Kind mirrors TxnKind-style discrimination for TransactionBlock.
type BlockKind uint8

const (
	BlockUserRun BlockKind = iota
	BlockPrologue
	BlockWaypoint
	BlockWriteSet
)

func (b TransactionBlock) Kind() BlockKind {
	switch {
	case b.BlockPrologueRun != nil:
		return BlockPrologue
	case b.WaypointRun != nil:
		return BlockWaypoint
	case b.WriteSetRun != nil:
		return BlockWriteSet
	default:
		return BlockUserRun
	}
}

// StateView is the read-only backing store the StagingCache overlays.
// Implementations are external collaborators (spec.md §6); not specified
// here beyond the contract.
type StateView interface {
	Get(path AccessPath) ([]byte, bool, error)
}

// SystemModules names the well-known module/function identifiers the
// driver invokes for prologue/epilogue/block-prologue bookkeeping
// (spec.md §6 "Consumed collaborator contracts").
type ModuleID struct {
	Address AccessPathAddress
	Name    string
}

// AccessPathAddress is the address component of a module identifier; kept
// distinct from common.Address so system-module identifiers stay decoupled
// from account addressing.
type AccessPathAddress [20]byte

var (
	AccountModule = ModuleID{Name: "Account"}
	BlockModule   = ModuleID{Name: "Block"}
)

const (
	FunctionBlockPrologue        = "block_prologue"
	FunctionBumpSequenceNumber   = "bump_sequence_number"
)
