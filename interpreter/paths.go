package interpreter

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/types"
)

// Well-known function identifiers the driver invokes on the account/block
// system modules (spec.md §6 "System modules").
const (
	FunctionAccountPrologue        = "prologue"
	FunctionAccountEpilogue        = "epilogue"
	FunctionWriteSetPrologue       = "writeset_prologue"
	FunctionWriteSetEpilogue       = "writeset_epilogue"
	FunctionBumpSequenceNumber     = types.FunctionBumpSequenceNumber
	FunctionBlockPrologue          = types.FunctionBlockPrologue
)

// BalancePath returns the access path backing an account's gas-currency
// balance. The exact encoding is internal to this stub interpreter; the
// driver never interprets access path contents (spec.md §3 GLOSSARY).
func BalancePath(addr common.Address) types.AccessPath {
	return append([]byte("account/balance/"), addr.Bytes()...)
}

// SequencePath returns the access path backing an account's sequence
// number.
func SequencePath(addr common.Address) types.AccessPath {
	return append([]byte("account/sequence/"), addr.Bytes()...)
}

// AuthKeyPath returns the access path backing an account's authentication
// key.
func AuthKeyPath(addr common.Address) types.AccessPath {
	return append([]byte("account/authkey/"), addr.Bytes()...)
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
