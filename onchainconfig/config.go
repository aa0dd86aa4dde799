// Package onchainconfig defines the on-chain configuration collaborator
// contract spec.md §6 names ("publishing_option.is_open(), the active
// CostTable, and currency registry"), plus a static Source sufficient for
// tests — grounded on the teacher's x/vm/types config accessors
// (GetEthChainConfig, GetChainConfig) which are likewise read fresh rather
// than cached across the values that can change at runtime.
package onchainconfig

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/policy"
)

// Source is read at the start of every UserRun and after every WaypointRun
// and WriteSetRun (spec.md §5 "Ordering guarantees"), since on-chain
// configuration may have changed as a result of those runs' effects.
type Source interface {
	Load() (policy.Config, gasmeter.CostTable, error)
}

// Static is a fixed-at-construction Source, sufficient for tests and for
// callers that reload configuration out of band. Loader, if set, is
// invoked by Load so tests can simulate a reload that observes the latest
// StagingCache state (e.g. after a WaypointRun changes publishing policy).
type Static struct {
	Config    policy.Config
	CostTable gasmeter.CostTable
	Loader    func() (policy.Config, gasmeter.CostTable, error)
}

func (s Static) Load() (policy.Config, gasmeter.CostTable, error) {
	if s.Loader != nil {
		return s.Loader()
	}
	return s.Config, s.CostTable, nil
}

// DefaultCostTable charges a flat per-byte intrinsic rate; a real cost
// table's computation is out of scope (spec.md Non-goals).
type DefaultCostTable struct {
	PerByte uint64
	Base    uint64
}

func (c DefaultCostTable) IntrinsicGasPerByte() uint64 { return c.PerByte }
func (c DefaultCostTable) BaseIntrinsicGas() uint64     { return c.Base }

// NewOpenConfig returns a permissive policy.Config (publishing open, one
// known currency), a reasonable starting point for tests.
func NewOpenConfig(currency string, coreCodeAddress common.Address) policy.Config {
	return policy.Config{
		SystemGasLimit:     0, // unbounded
		MinGasUnitPrice:    0,
		MaxGasUnitPrice:    0,
		MaxTransactionSize: 0, // unbounded
		KnownCurrencies:    map[string]bool{currency: true},
		PublishingOpen:     true,
		CoreCodeAddress:    coreCodeAddress,
	}
}
