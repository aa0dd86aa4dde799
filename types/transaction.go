package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AccessPath is an opaque byte-addressed storage key. Equality is exact byte
// equality; the driver never interprets the contents.
type AccessPath []byte

// String renders the access path as a hex string for logging.
func (p AccessPath) String() string {
	return common.Bytes2Hex(p)
}

// PayloadKind distinguishes the three shapes a signed user transaction's
// payload can take.
type PayloadKind uint8

const (
	PayloadScript PayloadKind = iota
	PayloadModule
	PayloadWriteSet
)

// Payload is the sum type for a UserTxn's body. Exactly one of Script,
// Module or WriteSet is populated, matching PayloadKind.
type Payload struct {
	Kind     PayloadKind
	Script   *ScriptPayload
	Module   *ModulePayload
	WriteSet *ChangeSet
}

type ScriptPayload struct {
	Code    []byte
	TyArgs  []string
	Args    [][]byte
}

type ModulePayload struct {
	Code []byte
}

// SignedTransaction is a user transaction prior to signature verification.
type SignedTransaction struct {
	Sender          common.Address
	SequenceNumber  uint64
	Payload         Payload
	MaxGasAmount    uint64
	GasUnitPrice    uint64
	GasCurrencyCode string
	ExpirationTime  uint64
	PublicKey       []byte
	Signature       []byte
	RawSizeBytes    uint64
}

// BlockMetadata carries the per-block prologue inputs.
type BlockMetadata struct {
	ID            common.Hash
	Round         uint64
	Timestamp     uint64
	PreviousVotes []common.Address
	Proposer      common.Address
}

// TxnKind classifies a Transaction for the BatchPartitioner (spec.md §3).
type TxnKind uint8

const (
	TxnUser TxnKind = iota
	TxnBlockMetadata
	TxnWaypointWriteSet
)

// Transaction is the tagged-variant input to the driver: UserTxn,
// BlockMetadata, or WaypointWriteSet (spec.md §3).
type Transaction struct {
	Kind          TxnKind
	User          *SignedTransaction
	BlockMetadata *BlockMetadata
	Waypoint      *ChangeSet
}

// TransactionMetadata is derived once per transaction; see spec.md §3.
type TransactionMetadata struct {
	Sender          common.Address
	SequenceNumber  uint64
	GasCurrencyCode string
	MaxGasAmount    uint64
	GasUnitPrice    uint64
	RawSizeBytes    uint64
	ExpirationTime  uint64
	PublicKey       []byte
}

// MaxCost returns max_gas_amount * gas_unit_price widened to avoid uint64
// overflow, as cosmossdk.io/math.LegacyDec does in the teacher's fee checks.
func (m TransactionMetadata) MaxCost() *uint256.Int {
	amt := uint256.NewInt(m.MaxGasAmount)
	price := uint256.NewInt(m.GasUnitPrice)
	return new(uint256.Int).Mul(amt, price)
}

// NewTransactionMetadata derives metadata from a signed transaction.
func NewTransactionMetadata(txn *SignedTransaction) TransactionMetadata {
	return TransactionMetadata{
		Sender:          txn.Sender,
		SequenceNumber:  txn.SequenceNumber,
		GasCurrencyCode: txn.GasCurrencyCode,
		MaxGasAmount:    txn.MaxGasAmount,
		GasUnitPrice:    txn.GasUnitPrice,
		RawSizeBytes:    txn.RawSizeBytes,
		ExpirationTime:  txn.ExpirationTime,
		PublicKey:       txn.PublicKey,
	}
}

// ReservedVMAddress is the sentinel sender used for block-prologue and
// waypoint execution; no account lookup is ever performed against it.
var ReservedVMAddress = common.Address{}

// BlockPrologueMetadata synthesizes metadata for a block-prologue run:
// reserved sender, unlimited gas (spec.md §3 "For block-prologue synthesis").
func BlockPrologueMetadata() TransactionMetadata {
	return TransactionMetadata{
		Sender:       ReservedVMAddress,
		MaxGasAmount: ^uint64(0),
	}
}
